package graphql

import (
	graphqlgo "github.com/graph-gophers/graphql-go"

	"library-backend/internal/domains/catalog/service"
)

const schemaSDL = `
  schema {
    query: Query
    mutation: Mutation
  }

  type Book {
    title: String!
    published: Int!
    author: Author!
    genres: [String!]!
    id: ID!
  }

  type Author {
    name: String!
    bookCount: Int
    born: Int
    id: ID!
  }

  type User {
    username: String!
    favoriteGenre: String!
    id: ID!
  }

  type Token {
    value: String!
  }

  type Query {
    allAuthors: [Author!]!
    allBooks(author: String, genre: String): [Book!]!
    authorCount: Int!
    bookCount: Int!
    me: User
  }

  type Mutation {
    addBook(
      title: String!
      published: Int!
      author: String!
      genres: [String!]!
    ): Book!
    editAuthor(name: String!, setBornTo: Int!): Author
    createUser(username: String!, favoriteGenre: String!): User
    login(username: String!, password: String!): Token
  }
`

// NewSchema parses the catalog schema against the resolvers. It panics on a
// schema/resolver mismatch, which is a programming error.
func NewSchema(svc *service.Service) *graphqlgo.Schema {
	return graphqlgo.MustParseSchema(schemaSDL, &Resolver{svc: svc},
		graphqlgo.MaxDepth(12),
		graphqlgo.MaxParallelism(8),
	)
}
