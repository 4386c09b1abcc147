package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/catalog"
	"library-backend/internal/domains/user"
)

// Authenticator resolves a bearer token to a user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// CurrentUser resolves "Authorization: Bearer <token>" into the request
// context. It never aborts: requests with a missing or bad token continue
// anonymously and the resolvers that need a user refuse them.
func CurrentUser(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Debug().
				Err(err).
				Str("request_id", c.GetString(RequestIDKey)).
				Msg("ignoring invalid bearer token")
			c.Next()
			return
		}

		c.Set("userID", u.ID)
		c.Request = c.Request.WithContext(catalog.WithCurrentUser(c.Request.Context(), u))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
