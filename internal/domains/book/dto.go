package book

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxTitleLength  = 500
	MaxGenreLength  = 100
	MaxGenresOnBook = 32
)

// AddBookRequest - addBook(title, published, author, genres)
type AddBookRequest struct {
	Title     string   `json:"title"`
	Published int      `json:"published"`
	Author    string   `json:"author"`
	Genres    []string `json:"genres"`
}

func (r AddBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.By(notBlank),
			validation.Length(1, MaxTitleLength),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.By(notBlank),
			validation.Length(1, 255),
		),
		validation.Field(&r.Genres,
			validation.NotNil.Error("genres must be provided"),
			validation.Length(0, MaxGenresOnBook),
			validation.Each(
				validation.Required.Error("genre must not be empty"),
				validation.Length(1, MaxGenreLength),
			),
		),
	)
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if s != "" && strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}
