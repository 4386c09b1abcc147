package catalog

// Operation names double as cache keys.
const (
	OpAllAuthors   = "allAuthors"
	OpAllBooks     = "allBooks"
	OpBooksByGenre = "booksByGenre"
	OpMe           = "me"
)

const bookFields = `
    id
    title
    published
    author { id name born }
    genres
`

const (
	AllAuthorsQuery = `query AllAuthors {
  allAuthors {
    id
    name
    born
    bookCount
  }
}`

	AllBooksQuery = `query AllBooks {
  allBooks {` + bookFields + `  }
}`

	BooksByGenreQuery = `query BooksByGenre($genre: String) {
  allBooks(genre: $genre) {` + bookFields + `  }
}`

	MeQuery = `query Me {
  me {
    id
    username
    favoriteGenre
  }
}`

	AddBookMutation = `mutation AddBook($title: String!, $published: Int!, $author: String!, $genres: [String!]!) {
  addBook(title: $title, published: $published, author: $author, genres: $genres) {` + bookFields + `  }
}`

	EditAuthorMutation = `mutation EditAuthor($name: String!, $year: Int!) {
  editAuthor(name: $name, setBornTo: $year) {
    id
    name
    born
    bookCount
  }
}`

	LoginMutation = `mutation Login($username: String!, $password: String!) {
  login(username: $username, password: $password) {
    value
  }
}`

	CreateUserMutation = `mutation CreateUser($username: String!, $favoriteGenre: String!) {
  createUser(username: $username, favoriteGenre: $favoriteGenre) {
    id
    username
    favoriteGenre
  }
}`
)
