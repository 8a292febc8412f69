package validator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlguard/internal/language"
	"github.com/hanpama/gqlguard/internal/schema"
	"github.com/hanpama/gqlguard/internal/validator"
)

const testSDL = `
type Query {
  user(id: ID!): User
  search(term: String, limit: Int = 10, order: SortOrder = ASC): [SearchResult!]
  ping: String
  pets(kinds: [PetKind!], first: Int): [Animal]
  node(id: ID!): Node
  register(name: String!, age: Int!, nickname: String, email: String!): User
  filter(where: UserFilter): [User]
}

type Mutation {
  rename(id: ID!, name: String!): User
}

interface Node {
  id: ID!
}

interface Animal {
  name: String!
}

type User implements Node {
  id: ID!
  name: String
  friends(first: Int = 5): [User!]
  pet: Animal
}

type Dog implements Animal & Node {
  id: ID!
  name: String!
  barkVolume: Int
}

type Cat implements Animal {
  name: String!
  lives: Int
}

union SearchResult = User | Dog

enum SortOrder {
  ASC
  DESC
}

enum PetKind {
  DOG
  CAT
}

input UserFilter {
  name: String
  order: SortOrder = DESC
}
`

func mustTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)
	return s
}

func newTestValidator(t *testing.T, opts ...validator.Option) *validator.Validator {
	t.Helper()
	return validator.New(mustTestSchema(t), opts...)
}

// mustParseQuery parses a GraphQL query and links its variables to their
// declarations.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	require.NoError(t, err, "parse error")
	for _, op := range d.Operations {
		language.BindVariableDefinitions(d, op)
	}
	return d
}

// rootField returns the first selected field of the first operation.
func rootField(t *testing.T, doc *language.QueryDocument) *language.Field {
	t.Helper()
	require.NotEmpty(t, doc.Operations)
	f, ok := doc.Operations[0].SelectionSet[0].(*language.Field)
	require.True(t, ok, "first selection is not a field")
	return f
}

func queryField(t *testing.T, s *schema.Schema, name string) *schema.Field {
	t.Helper()
	f := s.GetQueryType().Field(name)
	require.NotNil(t, f, "Query.%s", name)
	return f
}

func argumentNames(f *language.Field) []string {
	names := make([]string, 0, len(f.Arguments))
	for _, a := range f.Arguments {
		names = append(names, a.Name)
	}
	return names
}

func codes(errs *validator.Errors) []validator.Code {
	var out []validator.Code
	for _, e := range errs.All() {
		out = append(out, e.Code)
	}
	return out
}
