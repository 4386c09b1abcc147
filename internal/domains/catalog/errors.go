package catalog

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"library-backend/internal/domains/author"
	"library-backend/internal/domains/book"
	"library-backend/internal/domains/user"
)

// Error codes reported in GraphQL extensions.code
const (
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidInput     = errors.New("invalid input")
)

// Error is a classified failure ready to be reported to the caller.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Extensions is picked up by graphql-go and rendered under "extensions".
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// InvalidInput wraps a validation failure, keeping its message.
func InvalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// Classify maps domain errors to a caller-facing Error. Unknown errors are
// reported as internal with a generic message; the cause stays in Err.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	code := ToErrorCode(err)
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal server error"
	}

	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		msg = vErrs.Error()
	}

	return &Error{Code: code, Message: msg, Err: err}
}

// ToErrorCode maps an error to its extensions code
func ToErrorCode(err error) string {
	var vErrs validation.Errors
	switch {
	case errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, user.ErrInvalidToken):
		return CodeUnauthenticated
	case errors.Is(err, ErrInvalidInput),
		errors.As(err, &vErrs),
		errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrAccountLocked),
		errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, author.ErrAuthorNotFound),
		errors.Is(err, book.ErrAuthorMissing):
		return CodeBadUserInput
	default:
		return CodeInternal
	}
}
