package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/author"
	"library-backend/internal/domains/book"
	"library-backend/internal/domains/catalog"
	"library-backend/internal/domains/catalog/service"
	"library-backend/internal/domains/user"
)

// Resolver is the root resolver for Query and Mutation.
type Resolver struct {
	svc *service.Service
}

// fail classifies err for the response. Only call with a non-nil error.
func fail(ctx context.Context, op string, err error) error {
	classified := catalog.Classify(err)
	if classified.Code == catalog.CodeInternal {
		log.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("resolver failed")
	}
	return classified
}

// ========================================
// Query
// ========================================

func (r *Resolver) AllAuthors(ctx context.Context) ([]*authorResolver, error) {
	views, err := r.svc.AllAuthors(ctx)
	if err != nil {
		return nil, fail(ctx, "allAuthors", err)
	}

	out := make([]*authorResolver, len(views))
	for i := range views {
		out[i] = newAuthorView(views[i])
	}
	return out, nil
}

type allBooksArgs struct {
	Author *string
	Genre  *string
}

func (r *Resolver) AllBooks(ctx context.Context, args allBooksArgs) ([]*bookResolver, error) {
	books, err := r.svc.AllBooks(ctx, args.Author, args.Genre)
	if err != nil {
		return nil, fail(ctx, "allBooks", err)
	}

	out := make([]*bookResolver, len(books))
	for i := range books {
		out[i] = &bookResolver{b: books[i]}
	}
	return out, nil
}

func (r *Resolver) AuthorCount(ctx context.Context) (int32, error) {
	n, err := r.svc.AuthorCount(ctx)
	if err != nil {
		return 0, fail(ctx, "authorCount", err)
	}
	return int32(n), nil
}

func (r *Resolver) BookCount(ctx context.Context) (int32, error) {
	n, err := r.svc.BookCount(ctx)
	if err != nil {
		return 0, fail(ctx, "bookCount", err)
	}
	return int32(n), nil
}

func (r *Resolver) Me(ctx context.Context) *userResolver {
	u := r.svc.Me(ctx)
	if u == nil {
		return nil
	}
	return &userResolver{u: *u}
}

// ========================================
// Mutation
// ========================================

type addBookArgs struct {
	Title     string
	Published int32
	Author    string
	Genres    []string
}

func (r *Resolver) AddBook(ctx context.Context, args addBookArgs) (*bookResolver, error) {
	b, err := r.svc.AddBook(ctx, book.AddBookRequest{
		Title:     args.Title,
		Published: int(args.Published),
		Author:    args.Author,
		Genres:    args.Genres,
	})
	if err != nil {
		return nil, fail(ctx, "addBook", err)
	}
	return &bookResolver{b: *b}, nil
}

type editAuthorArgs struct {
	Name      string
	SetBornTo int32
}

func (r *Resolver) EditAuthor(ctx context.Context, args editAuthorArgs) (*authorResolver, error) {
	view, err := r.svc.EditAuthor(ctx, author.EditAuthorRequest{
		Name:      args.Name,
		SetBornTo: int(args.SetBornTo),
	})
	if err != nil {
		return nil, fail(ctx, "editAuthor", err)
	}
	if view == nil {
		return nil, nil
	}
	return newAuthorView(*view), nil
}

type createUserArgs struct {
	Username      string
	FavoriteGenre string
}

func (r *Resolver) CreateUser(ctx context.Context, args createUserArgs) (*userResolver, error) {
	u, err := r.svc.CreateUser(ctx, user.CreateUserRequest{
		Username:      args.Username,
		FavoriteGenre: args.FavoriteGenre,
	})
	if err != nil {
		return nil, fail(ctx, "createUser", err)
	}
	return &userResolver{u: *u}, nil
}

type loginArgs struct {
	Username string
	Password string
}

func (r *Resolver) Login(ctx context.Context, args loginArgs) (*tokenResolver, error) {
	token, err := r.svc.Login(ctx, user.LoginRequest{
		Username: args.Username,
		Password: args.Password,
	})
	if err != nil {
		return nil, fail(ctx, "login", err)
	}
	return &tokenResolver{t: *token}, nil
}

// ========================================
// Object resolvers
// ========================================

type bookResolver struct {
	b book.Book
}

func (r *bookResolver) ID() graphqlgo.ID { return graphqlgo.ID(r.b.ID.String()) }
func (r *bookResolver) Title() string    { return r.b.Title }
func (r *bookResolver) Published() int32 { return int32(r.b.Published) }
func (r *bookResolver) Genres() []string { return r.b.Genres }
func (r *bookResolver) Author() *authorResolver {
	// a populated author carries no bookCount
	return &authorResolver{a: r.b.Author}
}

type authorResolver struct {
	a         author.Author
	bookCount *int32
}

func newAuthorView(v author.View) *authorResolver {
	n := int32(v.BookCount)
	return &authorResolver{
		a:         author.Author{ID: v.ID, Name: v.Name, Born: v.Born},
		bookCount: &n,
	}
}

func (r *authorResolver) ID() graphqlgo.ID  { return graphqlgo.ID(r.a.ID.String()) }
func (r *authorResolver) Name() string      { return r.a.Name }
func (r *authorResolver) BookCount() *int32 { return r.bookCount }
func (r *authorResolver) Born() *int32 {
	if !r.a.HasBirthYear() {
		return nil
	}
	born := int32(*r.a.Born)
	return &born
}

type userResolver struct {
	u user.User
}

func (r *userResolver) ID() graphqlgo.ID      { return graphqlgo.ID(r.u.ID.String()) }
func (r *userResolver) Username() string      { return r.u.Username }
func (r *userResolver) FavoriteGenre() string { return r.u.FavoriteGenre }

type tokenResolver struct {
	t user.Token
}

func (r *tokenResolver) Value() string { return r.t.Value }
