package middleware

import (
	"errors"
	"net/http"
	"strings"

	"penora-write/shared/authutils"
	"penora-write/shared/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Ключи gin.Context, которые выставляет BearerAuth
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextEmail    = "email"
)

// TokenVerifier проверяет access-токен
type TokenVerifier interface {
	Verify(tokenString string) (*authutils.Claims, error)
}

// BearerAuth требует заголовок "Authorization: Bearer <token>".
// Ошибки отдаются в формате {"detail": "..."}.
func BearerAuth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header"})
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			msg := "Could not validate credentials"
			if errors.Is(err, authutils.ErrTokenExpired) {
				msg = "Token has expired"
			}
			log.Debug("Token verification failed", zap.Error(err), zap.String("tokenSnippet", logger.TokenSnippet(parts[1])))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msg})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}
