package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// subjectKey is the gin context key holding the authenticated subject.
const subjectKey = "auth.subject"

// RequireIdentity verifies the bearer token and stores its subject on the
// request context. The core only ever sees the subject string; token
// format and verification stay behind this boundary.
func RequireIdentity(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"Error": "Invalid token"})
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"Error": "Invalid token"})
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"Error": "Invalid token"})
			return
		}

		c.Set(subjectKey, sub)
		c.Next()
	}
}

// Subject returns the authenticated subject, or empty on unauthenticated
// routes.
func Subject(c *gin.Context) string {
	return c.GetString(subjectKey)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}
