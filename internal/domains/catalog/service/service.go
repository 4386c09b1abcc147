package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/domains/author"
	"library-backend/internal/domains/book"
	"library-backend/internal/domains/catalog"
	"library-backend/internal/domains/user"
	"library-backend/internal/infrastructure/notifier"
	"library-backend/pkg/jwt"
)

// TokenIssuer signs and verifies login tokens
type TokenIssuer interface {
	GenerateToken(userID, username string) (string, error)
	ValidateToken(token string) (*jwt.Claims, error)
}

// Deps groups the collaborators of the query service
type Deps struct {
	Authors   author.Repository
	Books     book.Repository
	Users     user.Repository
	Publisher notifier.Publisher
	Guard     user.LoginGuard
	Tokens    TokenIssuer
}

// Service answers the catalog queries and mutations.
type Service struct {
	authors   author.Repository
	books     book.Repository
	users     user.Repository
	publisher notifier.Publisher
	guard     user.LoginGuard
	tokens    TokenIssuer

	passwordHash []byte
}

// NewService hashes the shared login password once so login never compares
// plaintext.
func NewService(deps Deps, sharedPassword string) (*Service, error) {
	if sharedPassword == "" {
		return nil, errors.New("shared password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(sharedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash shared password: %w", err)
	}

	if deps.Guard == nil || deps.Publisher == nil || deps.Tokens == nil {
		return nil, errors.New("catalog service: guard, publisher and tokens are required")
	}

	return &Service{
		authors:      deps.Authors,
		books:        deps.Books,
		users:        deps.Users,
		publisher:    deps.Publisher,
		guard:        deps.Guard,
		tokens:       deps.Tokens,
		passwordHash: hash,
	}, nil
}

// ========================================
// QUERIES
// ========================================

// AllAuthors derives bookCount from the live book collection on every call.
func (s *Service) AllAuthors(ctx context.Context) ([]author.View, error) {
	authors, err := s.authors.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	books, err := s.books.Find(ctx, book.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return author.DeriveViews(authors, book.Authors(books)), nil
}

// AllBooks filters by author name and genre. Nil or empty arguments mean
// no filter; an unknown author yields an empty list.
func (s *Service) AllBooks(ctx context.Context, authorName, genre *string) ([]book.Book, error) {
	var filter book.Filter

	if authorName != nil && *authorName != "" {
		a, err := s.authors.FindByName(ctx, *authorName)
		if err != nil {
			if errors.Is(err, author.ErrAuthorNotFound) {
				return []book.Book{}, nil
			}
			return nil, fmt.Errorf("find author: %w", err)
		}
		filter.AuthorID = &a.ID
	}

	if genre != nil && *genre != "" {
		filter.Genre = genre
	}

	books, err := s.books.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *Service) AuthorCount(ctx context.Context) (int, error) {
	return s.authors.Count(ctx)
}

func (s *Service) BookCount(ctx context.Context) (int, error) {
	return s.books.Count(ctx)
}

// Me returns the current user or nil.
func (s *Service) Me(ctx context.Context) *user.User {
	return catalog.CurrentUser(ctx)
}

// ========================================
// MUTATIONS
// ========================================

// AddBook resolves or creates the author by exact name, inserts the book and
// broadcasts one book-added event. Authentication is checked before any
// store access. A newly created author is kept even if the book insert fails.
func (s *Service) AddBook(ctx context.Context, req book.AddBookRequest) (*book.Book, error) {
	if catalog.CurrentUser(ctx) == nil {
		return nil, catalog.ErrNotAuthenticated
	}

	if err := req.Validate(); err != nil {
		return nil, catalog.InvalidInput(err)
	}

	a, err := s.authors.FindByName(ctx, req.Author)
	if err != nil {
		if !errors.Is(err, author.ErrAuthorNotFound) {
			return nil, fmt.Errorf("find author: %w", err)
		}
		a, err = s.authors.Insert(ctx, req.Author, nil)
		if err != nil {
			return nil, fmt.Errorf("saving author failed: %w", err)
		}
		log.Info().Str("author", a.Name).Msg("author created by addBook")
	}

	b, err := s.books.Insert(ctx, book.NewBook{
		Title:     req.Title,
		Published: req.Published,
		AuthorID:  a.ID,
		Genres:    req.Genres,
	})
	if err != nil {
		return nil, fmt.Errorf("saving book failed: %w", err)
	}

	log.Info().
		Str("title", b.Title).
		Str("author", b.Author.Name).
		Msg("book added")

	// the book is stored; a broadcast failure does not fail the mutation
	if err := s.publisher.Publish(ctx, notifier.BookAdded(*b)); err != nil {
		log.Error().Err(err).Str("title", b.Title).Msg("failed to publish book-added event")
	}

	return b, nil
}

// EditAuthor sets born on the named author. An unknown name returns
// (nil, nil) and creates nothing. No change event is emitted.
func (s *Service) EditAuthor(ctx context.Context, req author.EditAuthorRequest) (*author.View, error) {
	if catalog.CurrentUser(ctx) == nil {
		return nil, catalog.ErrNotAuthenticated
	}

	if err := req.Validate(); err != nil {
		return nil, catalog.InvalidInput(err)
	}

	updated, err := s.authors.UpdateBorn(ctx, req.Name, req.SetBornTo)
	if err != nil {
		if errors.Is(err, author.ErrAuthorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("update author: %w", err)
	}

	books, err := s.books.Find(ctx, book.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	view := updated.ToView(author.BuildNameIndex(book.Authors(books)).BookCount(updated.Name))
	return &view, nil
}

func (s *Service) CreateUser(ctx context.Context, req user.CreateUserRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, catalog.InvalidInput(err)
	}

	u, err := s.users.Create(ctx, req.Username, req.FavoriteGenre)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("creating the user failed: %w", err)
	}

	log.Info().Str("username", u.Username).Msg("user created")
	return u, nil
}

// Login checks the shared password. Unknown users and wrong passwords get
// the same error; both count towards the lockout.
func (s *Service) Login(ctx context.Context, req user.LoginRequest) (*user.Token, error) {
	if err := req.Validate(); err != nil {
		return nil, catalog.InvalidInput(err)
	}

	locked, err := s.guard.IsLocked(ctx, req.Username)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("lock check failed")
	} else if locked {
		return nil, user.ErrAccountLocked
	}

	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if u == nil || bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)) != nil {
		if recErr := s.guard.RecordFailure(ctx, req.Username, catalog.ClientIP(ctx)); recErr != nil {
			log.Error().Err(recErr).Str("username", req.Username).Msg("failed to record failed login")
		}
		return nil, user.ErrInvalidCredentials
	}

	value, err := s.tokens.GenerateToken(u.ID.String(), u.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &user.Token{Value: value}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", user.ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", user.ErrInvalidToken, err)
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}
