package validator_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlguard/internal/language"
	"github.com/hanpama/gqlguard/internal/schema"
	"github.com/hanpama/gqlguard/internal/validator"
)

func TestValidateArguments_ZeroArgumentField(t *testing.T) {
	v := newTestValidator(t)
	doc := mustParseQuery(t, `{ ping(extra: 1, other: "x") }`)
	site := rootField(t, doc)

	errs := &validator.Errors{}
	err := v.ValidateArguments(errs, queryField(t, v.Schema(), "ping"), site, nil)

	require.NoError(t, err)
	require.Zero(t, errs.Len())
	require.Equal(t, []string{"extra", "other"}, argumentNames(site), "site is left as supplied")
}

func TestValidateArguments_MissingRequired(t *testing.T) {
	v := newTestValidator(t)

	t.Run("user(id: ID!) without arguments", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `{ user { id } }`))
		errs := &validator.Errors{}

		err := v.ValidateArguments(errs, queryField(t, v.Schema(), "user"), site, nil)

		require.ErrorIs(t, err, validator.ErrMissingRequiredArguments)
		var verr *validator.Error
		require.True(t, errors.As(err, &verr))
		require.Equal(t, []string{"id"}, verr.Missing)
		require.Contains(t, verr.Message, `"id"`)
		require.Contains(t, verr.Message, `"user"`)
		require.False(t, verr.Fatal)
		require.Equal(t, 1, errs.Len())
	})

	t.Run("all missing names in declaration order", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `{ register(nickname: "z") { id } }`))
		errs := &validator.Errors{}

		err := v.ValidateArguments(errs, queryField(t, v.Schema(), "register"), site, nil)

		var verr *validator.Error
		require.True(t, errors.As(err, &verr))
		if diff := cmp.Diff([]string{"name", "age", "email"}, verr.Missing); diff != "" {
			t.Fatalf("missing arguments mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("non-null argument with default is still required", func(t *testing.T) {
		s := schema.NewSchema("").AddBuiltins()
		field := schema.NewField("page", "", schema.NamedType("String")).
			AddArgument(schema.NewInputValue("size", "", schema.NonNullType(schema.NamedType("Int"))).SetDefault(20))
		s.AddType(schema.NewType("Query", schema.TypeKindObject, "").AddField(field)).SetQueryType("Query")

		site := rootField(t, mustParseQuery(t, `{ page }`))
		err := validator.New(s).ValidateArguments(&validator.Errors{}, field, site, nil)

		require.ErrorIs(t, err, validator.ErrMissingRequiredArguments)
		require.Empty(t, site.Arguments, "no defaults are injected on failure")
	})
}

func TestValidateArguments_DefaultInjection(t *testing.T) {
	v := newTestValidator(t)
	doc := mustParseQuery(t, `{ search { __typename } }`)
	site := rootField(t, doc)
	field := queryField(t, v.Schema(), "search")

	errs := &validator.Errors{}
	require.NoError(t, v.ValidateArguments(errs, field, site, nil))
	require.Zero(t, errs.Len())

	require.Equal(t, []string{"limit", "order"}, argumentNames(site))
	limit := site.Arguments.ForName("limit").Value
	require.Equal(t, language.IntValue, limit.Kind)
	require.Equal(t, 10, language.ValueToGo(limit))
	order := site.Arguments.ForName("order").Value
	require.Equal(t, language.EnumValue, order.Kind)
	require.Equal(t, "ASC", order.Raw)

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, v.ValidateArguments(errs, field, site, nil))
		require.Equal(t, []string{"limit", "order"}, argumentNames(site))

		plan, err := v.PlanArguments(field, site, nil)
		require.NoError(t, err)
		require.Empty(t, plan.Defaults())
		plan.Commit(site)
		require.Len(t, site.Arguments, 2)
	})

	t.Run("supplied arguments are not defaulted", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `{ search(limit: 3) { __typename } }`))
		require.NoError(t, v.ValidateArguments(&validator.Errors{}, field, site, nil))
		require.Equal(t, []string{"limit", "order"}, argumentNames(site))
		require.Equal(t, "3", site.Arguments.ForName("limit").Value.Raw)
	})
}

func TestPlanArguments_IsPure(t *testing.T) {
	v := newTestValidator(t)
	doc := mustParseQuery(t, `query($id: ID!) { user(id: $id) { id } }`)
	site := rootField(t, doc)

	plan, err := v.PlanArguments(queryField(t, v.Schema(), "user"), site, validator.VariableMap{"id": "u1"})
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, plan.BoundVariables())
	require.Equal(t, language.Variable, site.Arguments[0].Value.Kind, "planning does not mutate the site")

	plan.Commit(site)
	require.Equal(t, language.StringValue, site.Arguments[0].Value.Kind)
}

func TestValidateArguments_UnknownArgument(t *testing.T) {
	v := newTestValidator(t)
	site := rootField(t, mustParseQuery(t, `{ user(foo: 1, id: "1") { id } }`))

	errs := &validator.Errors{}
	err := v.ValidateArguments(errs, queryField(t, v.Schema(), "user"), site, nil)

	require.ErrorIs(t, err, validator.ErrUnknownArgument)
	all := errs.All()
	require.Len(t, all, 1)
	require.Equal(t, "foo", all[0].Argument)
	require.Contains(t, all[0].Message, `"foo"`)
	require.Equal(t, []validator.Location{{Line: 1, Column: 8}}, all[0].Locations)
}

func TestValidateArguments_Variables(t *testing.T) {
	v := newTestValidator(t)
	user := queryField(t, v.Schema(), "user")

	t.Run("binds the variable value once", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($id: ID!) { user(id: $id) { id } }`))

		require.NoError(t, v.ValidateArguments(&validator.Errors{}, user, site, validator.VariableMap{"id": 42}))

		arg := site.Arguments.ForName("id").Value
		require.Equal(t, language.StringValue, arg.Kind)
		require.Equal(t, "42", arg.Raw)
		require.NotNil(t, arg.VariableDefinition)
		require.Equal(t, "id", arg.VariableDefinition.Variable)

		// a second pass sees a literal and leaves it alone
		require.NoError(t, v.ValidateArguments(&validator.Errors{}, user, site, validator.VariableMap{"id": 99}))
		require.Equal(t, "42", site.Arguments.ForName("id").Value.Raw)
	})

	t.Run("type name mismatch leaves the node unbound", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($id: String!) { user(id: $id) { id } }`))
		errs := &validator.Errors{}

		err := v.ValidateArguments(errs, user, site, validator.VariableMap{"id": "1"})

		require.ErrorIs(t, err, validator.ErrVariableTypeMismatch)
		require.Contains(t, err.Error(), "$id")
		require.Equal(t, language.Variable, site.Arguments[0].Value.Kind)
	})

	t.Run("comparison ignores wrappers", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($id: ID) { user(id: $id) { id } }`))
		require.NoError(t, v.ValidateArguments(&validator.Errors{}, user, site, validator.VariableMap{"id": "1"}))
	})

	t.Run("variable missing from the request", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($id: ID!) { user(id: $id) { id } }`))
		err := v.ValidateArguments(&validator.Errors{}, user, site, validator.VariableMap{})
		require.ErrorIs(t, err, validator.ErrUndefinedVariable)
		require.Equal(t, language.Variable, site.Arguments[0].Value.Kind)
	})

	t.Run("undeclared variable", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `{ user(id: $id) { id } }`))
		err := v.ValidateArguments(&validator.Errors{}, user, site, validator.VariableMap{"id": "1"})
		require.ErrorIs(t, err, validator.ErrUndefinedVariable)
	})

	t.Run("declared default stands in for an absent value", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($id: ID = "7") { user(id: $id) { id } }`))
		require.NoError(t, v.ValidateArguments(&validator.Errors{}, user, site, nil))
		require.Equal(t, "7", site.Arguments[0].Value.Raw)
	})

	t.Run("enum list variable becomes enum literals", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($k: [PetKind!]) { pets(kinds: $k) { name } }`))
		require.NoError(t, v.ValidateArguments(&validator.Errors{}, queryField(t, v.Schema(), "pets"), site, validator.VariableMap{"k": []any{"DOG", "CAT"}}))

		kinds := site.Arguments.ForName("kinds").Value
		require.Equal(t, language.ListValue, kinds.Kind)
		require.Len(t, kinds.Children, 2)
		require.Equal(t, language.EnumValue, kinds.Children[0].Value.Kind)
		require.Equal(t, "DOG", kinds.Children[0].Value.Raw)
	})
}

func TestValidateArguments_InvalidValue(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name  string
		query string
		vars  validator.VariableMap
	}{
		{"string for int", `{ search(limit: "many") { __typename } }`, nil},
		{"unknown enum value", `{ search(order: SIDEWAYS) { __typename } }`, nil},
		{"null for non-null", `{ user(id: null) { id } }`, nil},
		{"record for scalar", `{ user(id: {a: 1}) { id } }`, nil},
		{"variable with bad value", `query($n: Int) { search(limit: $n) { __typename } }`, validator.VariableMap{"n": "x"}},
		{"unknown input field", `{ filter(where: {age: 3}) { id } }`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParseQuery(t, tt.query)
			site := rootField(t, doc)
			field := queryField(t, v.Schema(), site.Name)

			err := v.ValidateArguments(&validator.Errors{}, field, site, tt.vars)

			require.ErrorIs(t, err, validator.ErrInvalidArgumentType)
			var verr *validator.Error
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Argument)
			require.Contains(t, verr.Message, verr.Argument)
		})
	}
}

func TestValidateArguments_FailsFastOnFirstOffender(t *testing.T) {
	v := newTestValidator(t)
	site := rootField(t, mustParseQuery(t, `{ register(bogus: 1, age: "x") { id } }`))
	errs := &validator.Errors{}

	err := v.ValidateArguments(errs, queryField(t, v.Schema(), "register"), site, nil)

	require.ErrorIs(t, err, validator.ErrUnknownArgument)
	require.Equal(t, []validator.Code{validator.CodeUnknownArgument}, codes(errs))
}

func TestValidateArguments_InputObjectDefaults(t *testing.T) {
	v := newTestValidator(t)
	site := rootField(t, mustParseQuery(t, `query($w: UserFilter) { filter(where: $w) { id } }`))

	require.NoError(t, v.ValidateArguments(&validator.Errors{}, queryField(t, v.Schema(), "filter"), site, validator.VariableMap{"w": map[string]any{"name": "ada"}}))

	where := site.Arguments.ForName("where").Value
	require.Equal(t, language.ObjectValue, where.Kind)
	order := where.Children.ForName("order")
	require.NotNil(t, order)
	require.Equal(t, language.EnumValue, order.Kind)
	require.Equal(t, "DESC", order.Raw)
}

func TestValidateArguments_NestedVariables(t *testing.T) {
	v := newTestValidator(t)
	pets := queryField(t, v.Schema(), "pets")
	filter := queryField(t, v.Schema(), "filter")

	t.Run("list item", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($k: PetKind!) { pets(kinds: [$k, CAT]) { name } }`))
		vars := validator.VariableMap{"k": "DOG"}

		plan, err := v.PlanArguments(pets, site, vars)
		require.NoError(t, err)
		require.Equal(t, []string{"k"}, plan.BoundVariables())

		require.NoError(t, v.ValidateArguments(&validator.Errors{}, pets, site, vars))
		item := site.Arguments.ForName("kinds").Value.Children[0].Value
		require.Equal(t, language.EnumValue, item.Kind)
		require.Equal(t, "DOG", item.Raw)
		require.NotNil(t, item.VariableDefinition)

		got, err := v.ArgumentValues(pets, site)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"kinds": []any{"DOG", "CAT"}}, got)
	})

	t.Run("input object field", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($n: String) { filter(where: {name: $n}) { id } }`))
		require.NoError(t, v.ValidateArguments(&validator.Errors{}, filter, site, validator.VariableMap{"n": "alice"}))

		got, err := v.ArgumentValues(filter, site)
		require.NoError(t, err)
		want := map[string]any{"where": map[string]any{"name": "alice", "order": "DESC"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("argument values mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("undefined", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `{ filter(where: {name: $missing}) { id } }`))
		errs := &validator.Errors{}
		err := v.ValidateArguments(errs, filter, site, nil)
		require.ErrorIs(t, err, validator.ErrUndefinedVariable)
		require.Contains(t, err.Error(), "$missing")
		require.Equal(t, 1, errs.Len())
	})

	t.Run("type mismatch leaves the literal unbound", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($n: Int) { filter(where: {name: $n}) { id } }`))
		err := v.ValidateArguments(&validator.Errors{}, filter, site, validator.VariableMap{"n": 1})
		require.ErrorIs(t, err, validator.ErrVariableTypeMismatch)
		require.Equal(t, language.Variable, site.Arguments[0].Value.Children[0].Value.Kind)

		_, err = v.ArgumentValues(filter, site)
		require.ErrorContains(t, err, `"$n" is not bound`)
	})

	t.Run("invalid nested value", func(t *testing.T) {
		site := rootField(t, mustParseQuery(t, `query($k: PetKind!) { pets(kinds: [$k]) { name } }`))
		err := v.ValidateArguments(&validator.Errors{}, pets, site, validator.VariableMap{"k": "FISH"})
		require.ErrorIs(t, err, validator.ErrInvalidArgumentType)
	})
}
