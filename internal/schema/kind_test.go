package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	s := mustBuildTestSchema(t)

	tests := []struct {
		ref  *TypeRef
		want Kind
	}{
		{NamedType("String"), KindScalar},
		{NamedType("DateTime"), KindScalar},
		{NamedType("User"), KindObject},
		{NamedType("Animal"), KindInterface},
		{NamedType("SearchResult"), KindUnion},
		{NamedType("SortOrder"), KindEnum},
		{NamedType("CreateUserInput"), KindInputObject},
		{ListType(NamedType("User")), KindList},
		{NonNullType(ListType(NamedType("User"))), KindNonNull},
		{NamedType("Missing"), KindInvalid},
		{nil, KindInvalid},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, s.KindOf(tt.ref), "KindOf(%v)", tt.ref)
	}
}

func TestUnwrap(t *testing.T) {
	ref := NonNullType(ListType(NonNullType(NamedType("User"))))

	require.Equal(t, TypeRefKindList, Unwrap(ref).Kind)
	require.Equal(t, TypeRefKindNonNull, Unwrap(Unwrap(ref)).Kind)
	require.Equal(t, NamedType("User"), FullyUnwrap(ref))
	require.Equal(t, "User", GetNamedType(ref))

	named := NamedType("User")
	require.Same(t, named, Unwrap(named))
	require.Same(t, named, FullyUnwrap(named))
	require.Nil(t, FullyUnwrap(nil))
}

func TestNamedAndDescribe(t *testing.T) {
	s := mustBuildTestSchema(t)

	require.Equal(t, "Dog", s.Named(ListType(NonNullType(NamedType("Dog")))).Name)
	require.Nil(t, s.Named(NamedType("Missing")))

	require.Equal(t, "Dog", Describe(NamedType("Dog")))
	require.Equal(t, "LIST", Describe(ListType(NamedType("Dog"))))
	require.Equal(t, "NON_NULL", Describe(NonNullType(NamedType("Dog"))))
	require.Equal(t, "INPUT_OBJECT", KindInputObject.String())
	require.Equal(t, "INVALID", Kind(42).String())
}

func TestKindPredicates(t *testing.T) {
	require.True(t, KindList.IsWrapper())
	require.True(t, KindNonNull.IsWrapper())
	require.False(t, KindObject.IsWrapper())
	require.True(t, KindUnion.IsComposite())
	require.True(t, KindInputObject.IsComposite())
	require.False(t, KindEnum.IsComposite())
}
