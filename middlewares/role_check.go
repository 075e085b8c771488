package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-tables/utils"
)

// RequireRoles lets the request through when the authenticated role is one of roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		role, _ := userRole.(string)
		if !allowed[role] {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access is not allowed", role))
			c.Abort()
			return
		}

		c.Next()
	}
}
