package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-tables/utils"
)

// WebSocketAuthMiddleware guards the dashboard feed. Browsers skip CORS
// preflight on websocket upgrades, so the Origin is checked here, and the
// token comes from the query string since browsers cannot set headers on
// the upgrade either.
func WebSocketAuthMiddleware(origins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); !utils.OriginAllowed(origins, origin) {
			utils.ErrorLogger.Errorf("Websocket upgrade from %s rejected", origin)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set("role", claims.Role)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}
