// Package client is the catalog client session: a GraphQL connection, a read
// cache populated by queries and kept current by the book subscription.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"library-backend/internal/client/cache"
	"library-backend/internal/client/catalog"
	"library-backend/internal/client/genre"
	"library-backend/internal/client/graphql"
	"library-backend/internal/client/subscription"
)

// ErrNotLoggedIn is returned by operations that need a current user.
var ErrNotLoggedIn = errors.New("not logged in")

// Resubscribe delays after an eviction, doubled per consecutive eviction.
const (
	defaultReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
)

// Cache identities used by the session.
var (
	AllBooksIdentity   = cache.Identity(catalog.OpAllBooks, nil)
	AllAuthorsIdentity = cache.Identity(catalog.OpAllAuthors, nil)
)

// Session is one client's view of the catalog.
type Session struct {
	gql        *graphql.Client
	api        *catalog.API
	cache      *cache.ReadCache
	subscriber *subscription.Subscriber

	// authors are cached separately: they are not rows of books
	authors *authorCache

	reconnectDelay time.Duration
}

// Options configures NewSession.
type Options struct {
	// BaseURL is the server root, e.g. http://localhost:4000.
	BaseURL string

	// HTTPClient is used for queries. Streams always use a client without
	// timeout.
	HTTPClient *http.Client
	Token      string

	// ReconnectDelay is the first wait before resubscribing after an
	// eviction. Defaults to one second.
	ReconnectDelay time.Duration
}

func NewSession(opts Options) *Session {
	base := strings.TrimRight(opts.BaseURL, "/")

	gql := graphql.NewClient(base+"/graphql", opts.HTTPClient)
	gql.SetToken(opts.Token)

	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}

	return &Session{
		gql:            gql,
		api:            catalog.NewAPI(gql),
		cache:          cache.NewReadCache(),
		subscriber:     subscription.NewSubscriber(base+"/subscriptions/books", nil),
		authors:        &authorCache{},
		reconnectDelay: delay,
	}
}

// Cache exposes the read cache.
func (s *Session) Cache() *cache.ReadCache {
	return s.cache
}

func (s *Session) Token() string {
	return s.gql.Token()
}

// ========================================
// READS
// ========================================

// AllBooks answers from the cache when the result is present, otherwise
// queries the server and stores the result.
func (s *Session) AllBooks(ctx context.Context) ([]catalog.Book, error) {
	if cached, ok := s.cache.Get(AllBooksIdentity); ok {
		return cached.Rows, nil
	}
	return s.Refetch(ctx)
}

// Refetch replaces the cached allBooks result wholesale.
func (s *Session) Refetch(ctx context.Context) ([]catalog.Book, error) {
	rows, err := s.api.AllBooks(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch allBooks: %w", err)
	}
	return s.cache.Store(AllBooksIdentity, rows).Rows, nil
}

// AllAuthors is cache-first like AllBooks.
func (s *Session) AllAuthors(ctx context.Context) ([]catalog.Author, error) {
	if authors, ok := s.authors.get(); ok {
		return authors, nil
	}
	return s.RefetchAuthors(ctx)
}

func (s *Session) RefetchAuthors(ctx context.Context) ([]catalog.Author, error) {
	authors, err := s.api.AllAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch allAuthors: %w", err)
	}
	s.authors.set(authors)
	return authors, nil
}

// Genres lists the distinct genres of the cached allBooks result.
func (s *Session) Genres(ctx context.Context) ([]string, error) {
	rows, err := s.AllBooks(ctx)
	if err != nil {
		return nil, err
	}
	return genre.DistinctGenres(rows), nil
}

// BooksByGenre queries the server; nil means all books.
func (s *Session) BooksByGenre(ctx context.Context, g *string) ([]catalog.Book, error) {
	return genre.FilterByGenre(ctx, s.api, g)
}

func (s *Session) Me(ctx context.Context) (*catalog.User, error) {
	return s.api.Me(ctx)
}

// Recommend returns the books in the current user's favorite genre.
func (s *Session) Recommend(ctx context.Context) (string, []catalog.Book, error) {
	me, err := s.api.Me(ctx)
	if err != nil {
		return "", nil, err
	}
	if me == nil {
		return "", nil, ErrNotLoggedIn
	}

	favorite := me.FavoriteGenre
	books, err := genre.FilterByGenre(ctx, s.api, &favorite)
	if err != nil {
		return "", nil, err
	}
	return favorite, books, nil
}

// ========================================
// WRITES
// ========================================

// AddBook leaves the cache alone: the book arrives through the subscription.
func (s *Session) AddBook(ctx context.Context, in catalog.NewBook) (*catalog.Book, error) {
	return s.api.AddBook(ctx, in)
}

// EditAuthor refetches allAuthors on success, since the server pushes no
// event for author edits. A nil author means no author has that name.
func (s *Session) EditAuthor(ctx context.Context, name string, born int) (*catalog.Author, error) {
	updated, err := s.api.EditAuthor(ctx, name, born)
	if err != nil {
		return nil, err
	}
	if _, err := s.RefetchAuthors(ctx); err != nil {
		log.Warn().Err(err).Msg("refetch allAuthors after editAuthor failed")
	}
	return updated, nil
}

func (s *Session) CreateUser(ctx context.Context, username, favoriteGenre string) (*catalog.User, error) {
	return s.api.CreateUser(ctx, username, favoriteGenre)
}

// Login stores the token on the session.
func (s *Session) Login(ctx context.Context, username, password string) (string, error) {
	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	s.gql.SetToken(token)
	return token, nil
}

// Logout drops the token and every cached result.
func (s *Session) Logout() {
	s.gql.SetToken("")
	s.cache.Reset()
	s.authors.reset()
}

// ========================================
// SUBSCRIPTION
// ========================================

// Watch subscribes to book-added events and reconciles each into the cached
// allBooks result in arrival order. onApply, if set, sees every outcome.
// Watch returns nil once ctx is done.
//
// The subscription is opened before the initial fetch so no event falls in
// between; events already in the fetched result are dropped by title. On
// eviction the result is refetched and the subscription reopened after a
// delay that doubles while evictions keep coming.
func (s *Session) Watch(ctx context.Context, onApply func(cache.Applied)) error {
	reconciler := cache.NewReconciler(s.cache, AllBooksIdentity).OnApply(onApply)
	delay := s.reconnectDelay

	for {
		stream, err := s.subscriber.Open(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		opened := time.Now()

		if _, err := s.Refetch(ctx); err != nil {
			stream.Close()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := reconciler.Run(ctx, stream.Events()); err != nil {
			stream.Close()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		stream.Close()
		switch err := stream.Err(); {
		case errors.Is(err, subscription.ErrEvicted):
			if time.Since(opened) > maxReconnectDelay {
				delay = s.reconnectDelay
			}
			log.Warn().Dur("retry_in", delay).Msg("subscription evicted, refetching")

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			delay = min(delay*2, maxReconnectDelay)
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return err
		default:
			if ctx.Err() != nil {
				return nil
			}
			return errors.New("subscription closed by server")
		}
	}
}
