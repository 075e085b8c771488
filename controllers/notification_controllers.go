package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-tables/store"
	"github.com/yeremiapane/cafe-tables/utils"
)

type NotificationController struct {
	Store store.Store
}

func NewNotificationController(st store.Store) *NotificationController {
	return &NotificationController{Store: st}
}

// GetAllNotifications
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	notifs, err := nc.Store.ListNotifications(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

// GetNotificationByID
func (nc *NotificationController) GetNotificationByID(c *gin.Context) {
	id, ok := parseUintParam(c, "notif_id")
	if !ok {
		return
	}
	notif, err := nc.Store.GetNotification(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification detail", notif)
}
