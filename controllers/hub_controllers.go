package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/cafe-tables/hub"
	"github.com/yeremiapane/cafe-tables/utils"
)

type HubController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewHubController(h *hub.Hub, origins []string) *HubController {
	return &HubController{
		Hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return utils.OriginAllowed(origins, r.Header.Get("Origin"))
			},
		},
	}
}

// Serve -> websocket feed of table events for staff and admin dashboards
func (hc *HubController) Serve(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role, _ := roleInterface.(string)
	if role != "staff" && role != "admin" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := hc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	hc.Hub.Register(ws, role)

	// Drain reads until the client goes away.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	hc.Hub.Unregister(ws)
}
