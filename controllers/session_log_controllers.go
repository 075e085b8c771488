package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-tables/store"
	"github.com/yeremiapane/cafe-tables/utils"
)

type SessionLogController struct {
	Store store.Store
}

func NewSessionLogController(st store.Store) *SessionLogController {
	return &SessionLogController{Store: st}
}

// GetAllSessions -> every closed session, newest first
func (slc *SessionLogController) GetAllSessions(c *gin.Context) {
	logs, err := slc.Store.ListSessions(c.Request.Context(), 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All sessions", logs)
}

// GetTableSessions -> closed sessions of one table
func (slc *SessionLogController) GetTableSessions(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	if _, err := slc.Store.GetByID(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	logs, err := slc.Store.ListSessions(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table sessions", logs)
}
