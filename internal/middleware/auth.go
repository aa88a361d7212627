package middleware

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"input-portal/internal/models"
)

// Session keys.
const (
	SessionUsername = "username"
	SessionRole     = "role"
	SessionCompany  = "company"
)

const identityKey = "CurrentIdentity"

// BootstrapChecker reports whether the admin account has a password yet.
type BootstrapChecker interface {
	AdminPasswordSet(ctx context.Context) (bool, error)
}

// SaveIdentity stores a logged-in identity in the session cookie.
func SaveIdentity(c *gin.Context, id models.Identity) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Set(SessionUsername, id.Username)
	sess.Set(SessionRole, string(id.Role))
	sess.Set(SessionCompany, id.Company)
	return sess.Save()
}

// ClearIdentity ends the session.
func ClearIdentity(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sess.Save()
}

// InjectIdentity puts the session identity, if any, on the gin context.
func InjectIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		username, _ := sess.Get(SessionUsername).(string)
		role, _ := sess.Get(SessionRole).(string)
		company, _ := sess.Get(SessionCompany).(string)
		if username != "" && role != "" {
			c.Set(identityKey, models.Identity{Username: username, Role: models.UserRole(role), Company: company})
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity put there by InjectIdentity.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if _, ok := roleSet[id.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// RequireBootstrapComplete blocks the route with 409 until the admin
// password has been set through the setup flow.
func RequireBootstrapComplete(checker BootstrapChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		set, err := checker.AdminPasswordSet(c.Request.Context())
		if err != nil {
			logger.Error("bootstrap check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "credential registry unavailable"})
			return
		}
		if !set {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "admin_bootstrap_pending"})
			return
		}
		c.Next()
	}
}
