package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aryawidjaja/grievance-portal/models"
	"github.com/aryawidjaja/grievance-portal/utils"
)

// RequireRoles rejects callers whose role is not in the allowed set. Admins
// pass every gate.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		role := userRole.(string)
		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", allowed[0]))
		c.Abort()
	}
}
