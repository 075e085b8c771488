package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cafe-tables/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
		}).Info(path)
	}
}

// TableActionLogger records who acted on which table and whether it worked.
func TableActionLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		tableID := c.Param("table_id")
		userID, _ := c.Get("user_id")

		c.Next()

		fields := logrus.Fields{
			"table_id": tableID,
			"user_id":  userID,
			"action":   c.Request.Method + " " + c.FullPath(),
			"status":   c.Writer.Status(),
		}
		if c.Writer.Status() < 400 {
			utils.InfoLogger.WithFields(fields).Info("Table action applied")
		} else {
			utils.InfoLogger.WithFields(fields).Warn("Table action refused")
		}
	}
}
