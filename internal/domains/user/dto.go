package user

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// CreateUserRequest - createUser(username, favoriteGenre)
type CreateUserRequest struct {
	Username      string `json:"username"`
	FavoriteGenre string `json:"favoriteGenre"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Length(3, 64).Error("username must be 3-64 characters"),
			validation.Match(usernamePattern).Error("username may contain letters, digits, '.', '_' and '-'"),
		),
		validation.Field(&r.FavoriteGenre,
			validation.Required.Error("favorite genre is required"),
			validation.Length(1, 100),
		),
	)
}

// LoginRequest - login(username, password)
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// FailedLoginPayload is the asynq payload for failed login tracking
type FailedLoginPayload struct {
	Username  string    `json:"username"`
	IPAddress string    `json:"ipAddress"`
	Timestamp time.Time `json:"timestamp"`
}

// Lockout is the value stored under the account lock key.
type Lockout struct {
	Attempts int64     `msgpack:"attempts"`
	LastIP   string    `msgpack:"last_ip"`
	LockedAt time.Time `msgpack:"locked_at"`
}
