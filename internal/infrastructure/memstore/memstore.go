// Package memstore is an in-memory catalog store used for local development
// and tests. Records are kept in insertion order, matching the postgres
// store's created_at ordering.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"library-backend/internal/domains/author"
	"library-backend/internal/domains/book"
	"library-backend/internal/domains/user"
)

type storedBook struct {
	id        uuid.UUID
	title     string
	published int
	authorID  uuid.UUID
	genres    []string
}

type memoryState struct {
	authors []author.Author
	books   []storedBook
	users   []user.User
}

// Store holds all three collections behind one lock so a book read always
// resolves its author against the same snapshot.
type Store struct {
	mu    sync.RWMutex
	state memoryState
}

func New() *Store {
	return &Store{}
}

func (s *Store) Authors() author.Repository { return &authorRepo{s: s} }
func (s *Store) Books() book.Repository     { return &bookRepo{s: s} }
func (s *Store) Users() user.Repository     { return &userRepo{s: s} }

// ========================================
// Authors
// ========================================

type authorRepo struct{ s *Store }

func (r *authorRepo) FindAll(_ context.Context) ([]author.Author, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]author.Author, len(r.s.state.authors))
	for i, a := range r.s.state.authors {
		out[i] = cloneAuthor(a)
	}
	return out, nil
}

func (r *authorRepo) FindByName(_ context.Context, name string) (*author.Author, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.indexByName(name)
	if i < 0 {
		return nil, author.ErrAuthorNotFound
	}
	a := cloneAuthor(r.s.state.authors[i])
	return &a, nil
}

func (r *authorRepo) Insert(_ context.Context, name string, born *int) (*author.Author, error) {
	a := author.Author{ID: uuid.New(), Name: name, Born: cloneInt(born)}

	r.s.mu.Lock()
	r.s.state.authors = append(r.s.state.authors, a)
	r.s.mu.Unlock()

	out := cloneAuthor(a)
	return &out, nil
}

func (r *authorRepo) UpdateBorn(_ context.Context, name string, born int) (*author.Author, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.indexByName(name)
	if i < 0 {
		return nil, author.ErrAuthorNotFound
	}
	r.s.state.authors[i].Born = &born

	out := cloneAuthor(r.s.state.authors[i])
	return &out, nil
}

func (r *authorRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.state.authors), nil
}

// indexByName returns the oldest author with name, or -1. Caller holds the lock.
func (s *Store) indexByName(name string) int {
	for i := range s.state.authors {
		if s.state.authors[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) authorByID(id uuid.UUID) (author.Author, bool) {
	for _, a := range s.state.authors {
		if a.ID == id {
			return a, true
		}
	}
	return author.Author{}, false
}

// ========================================
// Books
// ========================================

type bookRepo struct{ s *Store }

func (r *bookRepo) Find(_ context.Context, filter book.Filter) ([]book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]book.Book, 0, len(r.s.state.books))
	for _, sb := range r.s.state.books {
		b, ok := r.s.resolve(sb)
		if !ok {
			continue
		}
		if filter.Matches(&b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *bookRepo) Insert(_ context.Context, nb book.NewBook) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.authorByID(nb.AuthorID); !ok {
		return nil, book.ErrAuthorMissing
	}

	sb := storedBook{
		id:        uuid.New(),
		title:     nb.Title,
		published: nb.Published,
		authorID:  nb.AuthorID,
		genres:    append([]string{}, nb.Genres...),
	}
	r.s.state.books = append(r.s.state.books, sb)

	b, _ := r.s.resolve(sb)
	return &b, nil
}

func (r *bookRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.state.books), nil
}

// resolve populates the book's author. Caller holds the lock.
func (s *Store) resolve(sb storedBook) (book.Book, bool) {
	a, ok := s.authorByID(sb.authorID)
	if !ok {
		return book.Book{}, false
	}
	return book.Book{
		ID:        sb.id,
		Title:     sb.title,
		Published: sb.published,
		Author:    cloneAuthor(a),
		Genres:    append([]string{}, sb.genres...),
	}, true
}

// ========================================
// Users
// ========================================

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, username, favoriteGenre string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.state.users {
		if u.Username == username {
			return nil, user.ErrUsernameTaken
		}
	}

	u := user.User{ID: uuid.New(), Username: username, FavoriteGenre: favoriteGenre}
	r.s.state.users = append(r.s.state.users, u)
	return &u, nil
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.state.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.state.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func cloneAuthor(a author.Author) author.Author {
	a.Born = cloneInt(a.Born)
	return a
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
