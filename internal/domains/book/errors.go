package book

import "errors"

var (
	// ErrAuthorMissing is returned by Insert when AuthorID references no author.
	ErrAuthorMissing = errors.New("referenced author does not exist")
)
