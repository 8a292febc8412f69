package validator_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlguard/internal/schema"
)

type record struct{ ID string }

func TestIsValidValue(t *testing.T) {
	v := newTestValidator(t)
	named := schema.NamedType
	list := schema.ListType
	nonNull := schema.NonNullType

	tests := []struct {
		name string
		ref  *schema.TypeRef
		val  any
		want bool
	}{
		{"object accepts record", named("User"), map[string]any{"id": "1"}, true},
		{"object accepts struct", named("User"), record{ID: "1"}, true},
		{"object accepts null", named("User"), nil, true},
		{"object accepts record sequence", named("User"), []any{map[string]any{}, nil}, true},
		{"object rejects scalar", named("User"), "1", false},
		{"object rejects mixed sequence", named("User"), []any{map[string]any{}, 1}, false},
		{"object rejects lazy", named("User"), make(chan int), false},
		{"interface accepts record", named("Animal"), map[string]any{}, true},
		{"union rejects scalar", named("SearchResult"), 3, false},
		{"input accepts record", named("UserFilter"), map[string]any{"name": "x"}, true},
		{"input rejects scalar", named("UserFilter"), true, false},
		{"list accepts slice", list(named("Int")), []int{1, 2}, true},
		{"list accepts null", list(named("Int")), nil, true},
		{"list accepts lazy", list(named("Int")), slices.Values([]int{1}), true},
		{"list rejects record", list(named("User")), map[string]any{}, false},
		{"list rejects scalar", list(named("Int")), 1, false},
		{"scalar accepts string", named("String"), "x", true},
		{"scalar accepts number", named("Float"), 1.5, true},
		{"scalar accepts bool", named("Boolean"), false, true},
		{"scalar accepts null", named("Int"), nil, true},
		{"scalar rejects record", named("String"), map[string]any{}, false},
		{"scalar rejects sequence", named("String"), []any{"x"}, false},
		{"enum accepts member", named("SortOrder"), "ASC", true},
		{"enum rejects non member", named("SortOrder"), "UP", false},
		{"enum accepts null", named("SortOrder"), nil, true},
		{"non-null rejects null", nonNull(named("String")), nil, false},
		{"non-null delegates", nonNull(named("SortOrder")), "UP", false},
		{"non-null list", nonNull(list(nonNull(named("Int")))), []any{1}, true},
		{"unknown type", named("Missing"), "x", false},
		{"nil reference", nil, "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, v.IsValidValue(tt.ref, tt.val))
		})
	}
}

func TestIsValidValue_ScalarHook(t *testing.T) {
	s := schema.NewSchema("").AddBuiltins()
	s.AddType(schema.NewType("Even", schema.TypeKindScalar, "").SetValidValue(func(v any) bool {
		n, ok := v.(int)
		return ok && n%2 == 0
	}))
	v := validatorFor(s)

	require.True(t, v.IsValidValue(schema.NamedType("Even"), 4))
	require.False(t, v.IsValidValue(schema.NamedType("Even"), 3))
	require.False(t, v.IsValidValue(schema.NamedType("Even"), map[string]any{}))
}

// Coercion never produces a value the checker then rejects.
func TestCoercionRoundTrip(t *testing.T) {
	v := newTestValidator(t)
	s := v.Schema()
	named := schema.NamedType

	cases := []struct {
		ref *schema.TypeRef
		val any
	}{
		{named("Int"), 7},
		{named("Int"), 7.0},
		{named("Int"), "12"},
		{named("Float"), 2},
		{named("Float"), "2.5"},
		{named("String"), "s"},
		{named("String"), 3},
		{named("String"), true},
		{named("Boolean"), true},
		{named("ID"), "abc"},
		{named("ID"), int64(5)},
		{named("SortOrder"), "DESC"},
		{named("UserFilter"), map[string]any{"name": "x"}},
		{schema.ListType(named("Int")), []any{1, "2"}},
		{schema.ListType(named("PetKind")), "DOG"},
		{schema.NonNullType(named("Int")), 1},
		{named("Int"), nil},
	}
	for _, c := range cases {
		if !v.IsValidValue(c.ref, c.val) {
			continue
		}
		coerced, err := s.Coerce(c.val, c.ref)
		if err != nil {
			continue
		}
		require.True(t, v.IsValidValue(c.ref, coerced), "%s: %#v coerced to %#v", c.ref, c.val, coerced)

		again, err := s.Coerce(coerced, c.ref)
		require.NoError(t, err, "%s: coerced value %#v must coerce again", c.ref, coerced)
		require.Equal(t, coerced, again)
	}
}
