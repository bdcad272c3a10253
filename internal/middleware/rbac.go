package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/athletenexus-api/internal/models"
	"github.com/noah-isme/athletenexus-api/internal/service"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
	"github.com/noah-isme/athletenexus-api/pkg/response"
)

// RequireRoles rejects requests whose token role is not in roles. Must run after JWT.
func RequireRoles(verifier service.AuthVerifier, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if err := verifier.RequireRole(claims, roles...); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SelfOrRoles allows the request when the email in query parameter key matches the token email,
// or when the token carries one of roles.
func SelfOrRoles(verifier service.AuthVerifier, key string, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if IsSelf(claims, c.Query(key)) {
			c.Next()
			return
		}
		if err := verifier.RequireRole(claims, roles...); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "email does not match token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// IsSelf reports whether email belongs to the token holder.
func IsSelf(claims *models.JWTClaims, email string) bool {
	email = strings.TrimSpace(email)
	return claims != nil && email != "" && strings.EqualFold(claims.Email, email)
}
