package user

import (
	"github.com/google/uuid"
)

// User is an account. Accounts carry no password of their own; login checks
// the shared password from config.
type User struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	FavoriteGenre string    `db:"favorite_genre" json:"favoriteGenre"`
}

// Token is the login result.
type Token struct {
	Value string `json:"value"`
}
