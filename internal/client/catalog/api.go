package catalog

import (
	"context"
	"errors"
)

// ErrNoToken is returned when login succeeds without a token value.
var ErrNoToken = errors.New("login returned no token")

// Doer executes one GraphQL operation.
type Doer interface {
	Do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error
}

// API maps every catalog operation onto a typed call.
type API struct {
	gql Doer
}

func NewAPI(gql Doer) *API {
	return &API{gql: gql}
}

func (a *API) AllAuthors(ctx context.Context) ([]Author, error) {
	var data struct {
		AllAuthors []Author `json:"allAuthors"`
	}
	if err := a.gql.Do(ctx, AllAuthorsQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.AllAuthors, nil
}

// AllBooks sends the unfiltered query when genre is nil, BooksByGenre
// otherwise.
func (a *API) AllBooks(ctx context.Context, genre *string) ([]Book, error) {
	var data struct {
		AllBooks []Book `json:"allBooks"`
	}

	query, vars := AllBooksQuery, map[string]interface{}(nil)
	if genre != nil {
		query, vars = BooksByGenreQuery, map[string]interface{}{"genre": *genre}
	}

	if err := a.gql.Do(ctx, query, vars, &data); err != nil {
		return nil, err
	}
	return data.AllBooks, nil
}

// Me returns nil without error when the session is anonymous.
func (a *API) Me(ctx context.Context) (*User, error) {
	var data struct {
		Me *User `json:"me"`
	}
	if err := a.gql.Do(ctx, MeQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Me, nil
}

func (a *API) AddBook(ctx context.Context, in NewBook) (*Book, error) {
	genres := in.Genres
	if genres == nil {
		genres = []string{}
	}

	var data struct {
		AddBook *Book `json:"addBook"`
	}
	err := a.gql.Do(ctx, AddBookMutation, map[string]interface{}{
		"title":     in.Title,
		"published": in.Published,
		"author":    in.Author,
		"genres":    genres,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.AddBook, nil
}

// EditAuthor returns nil without error when no author has that name.
func (a *API) EditAuthor(ctx context.Context, name string, born int) (*Author, error) {
	var data struct {
		EditAuthor *Author `json:"editAuthor"`
	}
	err := a.gql.Do(ctx, EditAuthorMutation, map[string]interface{}{
		"name": name,
		"year": born,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.EditAuthor, nil
}

func (a *API) CreateUser(ctx context.Context, username, favoriteGenre string) (*User, error) {
	var data struct {
		CreateUser *User `json:"createUser"`
	}
	err := a.gql.Do(ctx, CreateUserMutation, map[string]interface{}{
		"username":      username,
		"favoriteGenre": favoriteGenre,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.CreateUser, nil
}

func (a *API) Login(ctx context.Context, username, password string) (string, error) {
	var data struct {
		Login *struct {
			Value string `json:"value"`
		} `json:"login"`
	}
	err := a.gql.Do(ctx, LoginMutation, map[string]interface{}{
		"username": username,
		"password": password,
	}, &data)
	if err != nil {
		return "", err
	}
	if data.Login == nil || data.Login.Value == "" {
		return "", ErrNoToken
	}
	return data.Login.Value, nil
}
