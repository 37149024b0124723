package rbac

import (
	"net/http"

	"clubhub/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole allows access if the caller has any of the provided roles.
// Identity must already be in the request context (see auth.RequireAccessToken); a missing
// or unknown role is a 401, a known role outside the set is a 403.
func RequireAnyRole(allowed ...Role) gin.HandlerFunc {
	allowedSet := make(map[Role]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		raw, err := auth.Role(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}
		role, err := ParseRole(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentRole reads the caller's role from the request context.
func CurrentRole(c *gin.Context) (Role, bool) {
	raw, err := auth.Role(c.Request.Context())
	if err != nil {
		return "", false
	}
	role, err := ParseRole(raw)
	if err != nil {
		return "", false
	}
	return role, true
}
