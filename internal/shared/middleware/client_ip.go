package middleware

import (
	"github.com/gin-gonic/gin"

	"library-backend/internal/domains/catalog"
)

// ClientIP injects the client address into the request context so the
// login path can report it with failed attempts. It relies on gin's trusted
// proxy handling for X-Forwarded-For.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		c.Set("client_ip", ip)
		c.Request = c.Request.WithContext(catalog.WithClientIP(c.Request.Context(), ip))
		c.Next()
	}
}
