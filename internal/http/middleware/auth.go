// README: Firebase ID-token authentication and admin gate for gin routes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carrental/internal/infra"
)

const (
	ctxUID   = "caller_uid"
	ctxRole  = "caller_role"
	ctxEmail = "caller_email"
	ctxAdmin = "caller_admin"

	RoleAdmin = "admin"
)

// Auth rejects requests without a valid "Authorization: Bearer <id token>"
// header and stores the caller's uid, role and email on the context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil || token == nil || token.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		SetCaller(c, token)
		c.Next()
	}
}

// SetCaller records a verified token on the context.
func SetCaller(c *gin.Context, token *infra.FirebaseToken) {
	c.Set(ctxUID, token.UID)
	c.Set(ctxRole, token.Role())
	c.Set(ctxEmail, token.Email())
}

func CallerUID(c *gin.Context) string {
	return c.GetString(ctxUID)
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func CallerEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// AdminChecker reports whether a user is listed as an administrator.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// IsAdmin reports whether the caller holds the admin role claim or is listed
// by checker. checker may be nil.
func IsAdmin(c *gin.Context, checker AdminChecker) (bool, error) {
	if v, ok := c.Get(ctxAdmin); ok {
		return v.(bool), nil
	}
	admin := CallerRole(c) == RoleAdmin
	if !admin && checker != nil {
		listed, err := checker.IsAdmin(c.Request.Context(), CallerUID(c))
		if err != nil {
			return false, err
		}
		admin = listed
	}
	c.Set(ctxAdmin, admin)
	return admin, nil
}

// RequireAdmin must run after Auth.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, err := IsAdmin(c, checker)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
