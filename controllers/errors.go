package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-tables/models"
	"github.com/yeremiapane/cafe-tables/utils"
)

// respondServiceError maps the table error taxonomy onto HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, models.ErrIllegalTransition):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, models.ErrDuplicateNumber):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, models.ErrInvalidTime):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	case errors.Is(err, models.ErrValidation):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, models.ErrInvariantViolation):
		utils.ErrorLogger.Errorf("Invariant violation on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	case errors.Is(err, models.ErrTransport):
		utils.RespondError(c, http.StatusBadGateway, err)
	default:
		utils.ErrorLogger.Errorf("Unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := parseUint(c.Param(name))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, &models.ValidationError{Field: name, Reason: "must be a positive integer"})
		return 0, false
	}
	return id, true
}
