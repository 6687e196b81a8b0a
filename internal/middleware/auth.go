package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront-service/internal/models"
)

// Auth validates a Bearer JWT (HS256) and sets user_id in the request
// context. Token issuing belongs to the identity provider; this service only
// verifies the signature and reads the subject claim.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse("UNAUTHORIZED", "Missing bearer token"))
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse("UNAUTHORIZED", "Invalid or expired token"))
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse("UNAUTHORIZED", "Token has no subject"))
			return
		}
		userID, err := uuid.Parse(subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse("UNAUTHORIZED", "Token subject is not a user id"))
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// DevAuth is the development fallback when no JWT secret is configured:
// the caller identifies itself with an X-User-ID header.
func DevAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-User-ID")
		if header == "" {
			header = "00000000-0000-0000-0000-000000000001"
		}
		userID, err := uuid.Parse(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewErrorResponse("UNAUTHORIZED", "X-User-ID is not a valid UUID"))
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

// GetUserID extracts the authenticated user's id from the request context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
