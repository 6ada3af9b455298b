package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carelink.id/clinicapi/internal/auth"
	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
)

type AuthMiddleware struct {
	tokens  *auth.TokenService
	revoker auth.Revoker
}

func NewAuthMiddleware(tokens *auth.TokenService, revoker auth.Revoker) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:  tokens,
		revoker: revoker,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		claims, err := m.tokens.Validate(tokenString, auth.TokenTypeAccess)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		// Tokens issued before the user's revocation mark (set on role
		// change or account deletion) carry stale claims.
		if m.revoker != nil && claims.IssuedAt != nil {
			revokedSince, err := m.revoker.ClaimsRevokedSince(c.Request.Context(), userID)
			if err == nil && !revokedSince.IsZero() && !claims.IssuedAt.Time.After(revokedSince) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				c.Abort()
				return
			}
		}

		authz.SetIdentity(c, authz.Identity{
			UserID:    userID,
			Username:  claims.Username,
			Role:      claims.Role,
			ProfileID: claims.ProfileID,
		})
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := authz.FromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		if id.Role != model.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
