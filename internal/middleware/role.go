package middleware

import (
	"net/http"

	"inkbook/internal/domain"
	"inkbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures the authenticated user has one of the given
// roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}
		if !allowed[role.(string)] {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaffOnly admits artists and studio owners.
func StaffOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleArtist, domain.RoleStudioOwner)
}

// OwnerOnly admits studio owners.
func OwnerOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleStudioOwner)
}
