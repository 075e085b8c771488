package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-tables/models"
	"github.com/yeremiapane/cafe-tables/services"
	"github.com/yeremiapane/cafe-tables/utils"
)

type TableController struct {
	Engine      *services.SessionEngine
	Coordinator *services.TimeUpdateCoordinator
	Clock       func() time.Time
}

func NewTableController(engine *services.SessionEngine, coordinator *services.TimeUpdateCoordinator) *TableController {
	return &TableController{Engine: engine, Coordinator: coordinator, Clock: time.Now}
}

func (tc *TableController) now() time.Time {
	if tc.Clock == nil {
		return time.Now()
	}
	return tc.Clock()
}

type reservationBody struct {
	CustomerName string     `json:"customer_name" binding:"required"`
	Contact      string     `json:"contact"`
	StartTime    *time.Time `json:"start_time"`
}

func (b reservationBody) toReservation() models.Reservation {
	res := models.Reservation{CustomerName: b.CustomerName, Contact: b.Contact}
	if b.StartTime != nil {
		res.StartTime = *b.StartTime
	}
	return res
}

// CreateTable -> add a table, always starting as available
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Number   int `json:"number" binding:"required,min=1"`
		Capacity int `json:"capacity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Engine.CreateTable(c.Request.Context(), req.Number, req.Capacity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> filtered, sorted and paginated list with full records
func (tc *TableController) GetAllTables(c *gin.Context) {
	tc.listTables(c, func(items []models.Table) interface{} { return items })
}

// GetPublicTables -> same listing for the public board, reservations redacted
func (tc *TableController) GetPublicTables(c *gin.Context) {
	tc.listTables(c, func(items []models.Table) interface{} {
		public := make([]models.PublicTable, 0, len(items))
		for _, t := range items {
			public = append(public, t.Public())
		}
		return public
	})
}

func (tc *TableController) listTables(c *gin.Context, present func([]models.Table) interface{}) {
	q, err := bindTableQuery(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	filter, err := q.Filter()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sortState, err := q.SortState()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tables, err := tc.Engine.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	view := services.FilterSortPaginate(tables, filter, sortState, q.Paging())
	utils.RespondJSON(c, http.StatusOK, "List of tables", gin.H{
		"items":       present(view.Items),
		"total":       view.Total,
		"page":        view.Page,
		"page_size":   view.PageSize,
		"total_pages": view.TotalPages,
		"sort":        gin.H{"key": sortState.Key, "direction": sortState.Direction},
	})
}

// GetTableByID -> detail of one table
func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Engine.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// DeleteTable -> remove a table that has no running session
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	if err := tc.Engine.DeleteTable(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": id})
}

func (tc *TableController) ReserveTable(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	var body reservationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	table, err := tc.Engine.Reserve(c.Request.Context(), id, body.toReservation())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table reserved", table)
}

func (tc *TableController) CancelReservation(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Engine.CancelReservation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", table)
}

func (tc *TableController) StartSession(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Engine.StartSession(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session started", table)
}

func (tc *TableController) EndSession(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Engine.EndSession(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session ended", table)
}

// UpdateTableStatus -> manual status override, still bound to the legal transitions
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	var body struct {
		Status      string           `json:"status" binding:"required"`
		Reservation *reservationBody `json:"reservation"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var details *models.Reservation
	if body.Reservation != nil {
		res := body.Reservation.toReservation()
		details = &res
	}
	table, err := tc.Engine.ChangeStatus(c.Request.Context(), id, body.Status, details)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// UpdateExpectedEndTime -> move the expected end of a running session, optionally notifying customers
func (tc *TableController) UpdateExpectedEndTime(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	var body struct {
		ExpectedEndTime     *time.Time `json:"expected_end_time"`
		NotifyCustomers     bool       `json:"notify_customers"`
		NotificationMessage string     `json:"notification_message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.ExpectedEndTime == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("expected_end_time is required"))
		return
	}

	result, err := tc.Coordinator.UpdateExpectedEnd(c.Request.Context(), services.TimeUpdateRequest{
		ID:              id,
		NewTime:         *body.ExpectedEndTime,
		NotifyCustomers: body.NotifyCustomers,
		Message:         body.NotificationMessage,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Expected end time updated", result)
}

func (tc *TableController) GetTableProgress(c *gin.Context) {
	id, ok := parseUintParam(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Engine.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table progress", services.ProgressFor(table, tc.now()))
}

func (tc *TableController) GetAllProgress(c *gin.Context) {
	tables, err := tc.Engine.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table progress", services.BuildProgress(tables, tc.now()))
}

// GetTransitions -> the legal status moves, so dashboards only offer valid actions
func (tc *TableController) GetTransitions(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Table transitions", models.Transitions())
}

// GetDashboardStats -> counts per status and seat usage
func (tc *TableController) GetDashboardStats(c *gin.Context) {
	tables, err := tc.Engine.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table stats", services.ComputeStats(tables))
}
