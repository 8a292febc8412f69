package validator_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hanpama/gqlguard/internal/eventbus"
	"github.com/hanpama/gqlguard/internal/events"
	"github.com/hanpama/gqlguard/internal/language"
	"github.com/hanpama/gqlguard/internal/validator"
)

func TestValidateOperation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		op    string
		vars  validator.VariableMap
		want  []validator.Code
	}{
		{
			name:  "valid query",
			query: `query Q($id: ID!) { user(id: $id) { id name friends { id } } ping }`,
			vars:  validator.VariableMap{"id": "1"},
		},
		{
			name:  "unknown field",
			query: `{ user(id: "1") { id age } }`,
			want:  []validator.Code{validator.CodeFieldNotFound},
		},
		{
			name:  "errors in sibling selections are all collected",
			query: `{ user { id } register(name: "a", age: 1, email: "e", x: 1) { id } nope }`,
			want: []validator.Code{
				validator.CodeMissingRequiredArguments,
				validator.CodeUnknownArgument,
				validator.CodeFieldNotFound,
			},
		},
		{
			name:  "argument errors do not stop descent",
			query: `{ user { bogus } }`,
			want:  []validator.Code{validator.CodeMissingRequiredArguments, validator.CodeFieldNotFound},
		},
		{
			name:  "typename is always selectable",
			query: `{ __typename search { __typename } }`,
		},
		{
			name:  "union member fragments",
			query: `{ search { ... on User { id } ... on Dog { barkVolume } } }`,
		},
		{
			name:  "fragment outside the union",
			query: `{ search { ... on Cat { lives } } }`,
			want:  []validator.Code{validator.CodeTypeNotInUnion},
		},
		{
			name:  "interface implementation fragments",
			query: `{ pets { name ... on Dog { barkVolume } ...catFields } } fragment catFields on Cat { lives }`,
		},
		{
			name:  "fragment on a type outside the interface",
			query: `{ pets { ... on User { id } } }`,
			want:  []validator.Code{validator.CodeInterfaceNotImplemented},
		},
		{
			name:  "object fragment on another object",
			query: `{ user(id: "1") { ...dogFields } } fragment dogFields on Dog { barkVolume }`,
			want:  []validator.Code{validator.CodeFragmentTypeMismatch},
		},
		{
			name:  "abstract fragment on an object",
			query: `{ user(id: "1") { ...nodeFields } } fragment nodeFields on Node { id }`,
		},
		{
			name:  "abandoned branch is not validated further",
			query: `{ user(id: "1") { ... on Dog { nope } } }`,
			want:  []validator.Code{validator.CodeFragmentTypeMismatch},
		},
		{
			name:  "unknown fragment",
			query: `{ user(id: "1") { ...missing } }`,
			want:  []validator.Code{validator.CodeUnknownFragment},
		},
		{
			name:  "unknown type condition",
			query: `{ user(id: "1") { ... on Ghost { id } } }`,
			want:  []validator.Code{validator.CodeFragmentTypeMismatch},
		},
		{
			name:  "fragment cycles terminate",
			query: `{ user(id: "1") { ...a } } fragment a on User { friends { ...b } } fragment b on User { id ...a }`,
		},
		{
			name:  "variables inside fragments",
			query: `query($n: Int) { user(id: "1") { ...f } } fragment f on User { friends(first: $n) { id } }`,
			vars:  validator.VariableMap{"n": 3},
		},
		{
			name:  "variable inside fragment without declaration",
			query: `{ user(id: "1") { ...f } } fragment f on User { friends(first: $n) { id } }`,
			vars:  validator.VariableMap{"n": 3},
			want:  []validator.Code{validator.CodeUndefinedVariable},
		},
		{
			name:  "variables nested in literals",
			query: `query($k: PetKind!, $n: String) { pets(kinds: [$k]) { name } filter(where: {name: $n}) { id } }`,
			vars:  validator.VariableMap{"k": "DOG", "n": "ada"},
		},
		{
			name:  "undeclared variable nested in a literal",
			query: `{ filter(where: {name: $n}) { id } }`,
			vars:  validator.VariableMap{"n": "ada"},
			want:  []validator.Code{validator.CodeUndefinedVariable},
		},
		{
			name:  "id variable beyond int64",
			query: `query($id: ID!) { user(id: $id) { id } }`,
			vars:  validator.VariableMap{"id": 1e19},
			want:  []validator.Code{validator.CodeInvalidArgumentType},
		},
		{
			name:  "mutation root",
			query: `mutation { rename(id: "1", name: "x") { id } }`,
		},
		{
			name:  "subscription without a root",
			query: `subscription { ping }`,
			want:  []validator.Code{validator.CodeOperationNotFound},
		},
		{
			name:  "named operation",
			query: `query A { ping } query B { nope }`,
			op:    "B",
			want:  []validator.Code{validator.CodeFieldNotFound},
		},
		{
			name:  "ambiguous operation",
			query: `query A { ping } query B { ping }`,
			want:  []validator.Code{validator.CodeOperationNotFound},
		},
		{
			name:  "missing operation",
			query: `query A { ping }`,
			op:    "C",
			want:  []validator.Code{validator.CodeOperationNotFound},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(t)
			doc := mustParseQuery(t, tt.query)

			errs := v.ValidateOperation(context.Background(), doc, tt.op, tt.vars)

			if diff := cmp.Diff(tt.want, codes(errs)); diff != "" {
				t.Fatalf("error codes mismatch (-want +got):\n%s\nerrors: %v", diff, errs.Err())
			}
		})
	}
}

func TestValidateOperation_PathsAndMutation(t *testing.T) {
	v := newTestValidator(t)
	doc := mustParseQuery(t, `{ me: user(id: "1") { friends { id age } } search { __typename } }`)

	errs := v.ValidateOperation(context.Background(), doc, "", nil)

	all := errs.All()
	require.Len(t, all, 1)
	require.Equal(t, validator.Path{"me", "friends", "age"}, all[0].Path)

	// defaults are materialised on valid fields
	friends := rootField(t, doc).SelectionSet[0].(*language.Field)
	require.Equal(t, []string{"first"}, argumentNames(friends))
	search := doc.Operations[0].SelectionSet[1].(*language.Field)
	require.Equal(t, []string{"limit", "order"}, argumentNames(search))

	t.Run("revalidation is idempotent", func(t *testing.T) {
		again := v.ValidateOperation(context.Background(), doc, "", nil)
		require.Equal(t, codes(errs), codes(again))
		require.Equal(t, []string{"first"}, argumentNames(friends))
		require.Equal(t, []string{"limit", "order"}, argumentNames(search))
	})
}

func TestValidateOperation_FailFast(t *testing.T) {
	v := newTestValidator(t, validator.WithFailFast(true))
	doc := mustParseQuery(t, `{ nope user { id } alsoNope }`)

	errs := v.ValidateOperation(context.Background(), doc, "", nil)

	require.Equal(t, []validator.Code{validator.CodeFieldNotFound}, codes(errs))
}

func TestValidateOperation_FailFastSkipsSelectionAfterArgumentError(t *testing.T) {
	v := newTestValidator(t, validator.WithFailFast(true))
	doc := mustParseQuery(t, `{ user { bogus } }`)

	errs := v.ValidateOperation(context.Background(), doc, "", nil)

	require.Equal(t, []validator.Code{validator.CodeMissingRequiredArguments}, codes(errs))
}

func TestValidateOperation_LogsAndEvents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	v := newTestValidator(t, validator.WithLogger(zap.New(core)))

	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	var started []events.ValidationStart
	var finished []events.ValidationFinish
	unsubStart := eventbus.Subscribe(func(_ context.Context, e events.ValidationStart) { started = append(started, e) })
	unsubFinish := eventbus.Subscribe(func(_ context.Context, e events.ValidationFinish) { finished = append(finished, e) })
	defer unsubStart()
	defer unsubFinish()

	doc := mustParseQuery(t, `query Lookup { user { id } }`)
	v.ValidateOperation(context.Background(), doc, "", nil)

	require.Equal(t, []events.ValidationStart{{OperationName: "Lookup", OperationType: "query"}}, started)
	require.Len(t, finished, 1)
	require.Len(t, finished[0].Errors, 1)
	require.ErrorIs(t, finished[0].Errors[0], validator.ErrMissingRequiredArguments)

	failures := logs.FilterMessage("validation failed").All()
	require.Len(t, failures, 1)
	require.Equal(t, "MISSING_REQUIRED_ARGUMENTS", failures[0].ContextMap()["code"])
	require.Equal(t, "user", failures[0].ContextMap()["path"])
	require.Equal(t, 1, logs.FilterMessage("validated operation").Len())
}
