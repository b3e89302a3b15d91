package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/models"
)

// AdminChecker decides whether an identity holds the administrative role.
type AdminChecker interface {
	IsAdmin(identity models.Identity) bool
}

// RequireAdmin rejects callers without the admin role claim.
// This middleware should be used after Authenticate middleware
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		if !checker.IsAdmin(identity) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Admin privileges required."})
			return
		}

		c.Next()
	}
}
