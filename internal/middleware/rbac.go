package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
	"github.com/noah-isme/degree-advisor-api/pkg/response"
)

// SelfParam names the route parameter compared against the caller for SELF access.
const SelfParam = "studentId"

// RBAC enforces role-based access control. "SELF" lets a caller reach routes
// whose :studentId equals their own user id.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{})
	for _, a := range allowed {
		if a == "SELF" {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param(SelfParam); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
