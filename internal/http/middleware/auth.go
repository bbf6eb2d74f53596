// README: Firebase ID-token auth, profile loading and role gates.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pharmago/internal/infra"
	"pharmago/internal/modules/profile"
	"pharmago/internal/types"
)

const (
	ctxKeyUID     = "auth.uid"
	ctxKeyRole    = "auth.role"
	ctxKeyProfile = "auth.profile"
)

// Auth verifies the bearer token and stores the caller uid (and the optional
// role claim) on the context. Requests without a valid token get 401.
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
		c.Set(ctxKeyUID, token.UID)
		if role, ok := token.Claims["role"].(string); ok {
			c.Set(ctxKeyRole, role)
		}
		c.Next()
	}
}

func CallerUID(c *gin.Context) string {
	return c.GetString(ctxKeyUID)
}

// CallerRole is the role claim on the token, empty when absent. Authorisation
// uses the registered profile instead, see Caller.
func CallerRole(c *gin.Context) string {
	return c.GetString(ctxKeyRole)
}

type ProfileLoader interface {
	Get(ctx context.Context, id types.ID) (*profile.Profile, error)
}

// LoadProfile attaches the caller's registered profile. Callers without one
// get 403 until they register.
func LoadProfile(loader ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := loader.Get(c.Request.Context(), types.ID(CallerUID(c)))
		if errors.Is(err, types.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "profile not registered"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "profile lookup failed"})
			return
		}
		c.Set(ctxKeyProfile, p)
		c.Next()
	}
}

// CallerProfile returns the profile set by LoadProfile, or nil.
func CallerProfile(c *gin.Context) *profile.Profile {
	v, ok := c.Get(ctxKeyProfile)
	if !ok {
		return nil
	}
	p, _ := v.(*profile.Profile)
	return p
}

// Caller is the authenticated actor; ok is false before LoadProfile ran.
func Caller(c *gin.Context) (types.Actor, bool) {
	p := CallerProfile(c)
	if p == nil {
		return types.Actor{}, false
	}
	return p.Actor(), true
}

// RequireRole admits only callers whose profile has one of roles.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Caller(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "profile not registered"})
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: " + string(actor.Role) + " role cannot use this endpoint"})
	}
}
