package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cafe-tables/controllers"
	"github.com/yeremiapane/cafe-tables/models"
	"github.com/yeremiapane/cafe-tables/services"
	"github.com/yeremiapane/cafe-tables/store"
)

type testEnv struct {
	router *gin.Engine
	store  *store.MemoryStore
	engine *services.SessionEngine
}

// setupTableRouter mounts the table handlers without auth on a fresh memory store.
func setupTableRouter(t *testing.T) testEnv {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	engine := services.NewSessionEngine(st, nil)
	coordinator := services.NewTimeUpdateCoordinator(engine, services.NewNotifier("noop", "", ""), st, nil)
	coordinator.Location = time.UTC
	tableCtrl := controllers.NewTableController(engine, coordinator)
	sessionCtrl := controllers.NewSessionLogController(st)
	notificationCtrl := controllers.NewNotificationController(st)

	r := gin.New()
	r.GET("/board", tableCtrl.GetPublicTables)
	r.GET("/tables", tableCtrl.GetAllTables)
	r.POST("/tables", tableCtrl.CreateTable)
	r.GET("/tables/progress", tableCtrl.GetAllProgress)
	r.GET("/tables/stats", tableCtrl.GetDashboardStats)
	r.GET("/tables/transitions", tableCtrl.GetTransitions)
	r.GET("/tables/:table_id", tableCtrl.GetTableByID)
	r.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	r.GET("/tables/:table_id/progress", tableCtrl.GetTableProgress)
	r.GET("/tables/:table_id/sessions", sessionCtrl.GetTableSessions)
	r.POST("/tables/:table_id/reserve", tableCtrl.ReserveTable)
	r.POST("/tables/:table_id/cancel-reservation", tableCtrl.CancelReservation)
	r.POST("/tables/:table_id/start", tableCtrl.StartSession)
	r.POST("/tables/:table_id/end", tableCtrl.EndSession)
	r.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	r.PATCH("/tables/:table_id/expected-end", tableCtrl.UpdateExpectedEndTime)
	r.GET("/sessions", sessionCtrl.GetAllSessions)
	r.GET("/notifications", notificationCtrl.GetAllNotifications)
	r.GET("/notifications/:notif_id", notificationCtrl.GetNotificationByID)

	return testEnv{router: r, store: st, engine: engine}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (env testEnv) do(t *testing.T, method, url string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (env testEnv) seed(t *testing.T, numbers ...int) []models.Table {
	t.Helper()
	var out []models.Table
	for _, n := range numbers {
		table, err := env.engine.CreateTable(context.Background(), n, 2+n%3)
		require.NoError(t, err)
		out = append(out, table)
	}
	return out
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestCreateTable(t *testing.T) {
	env := setupTableRouter(t)

	code, resp := env.do(t, http.MethodPost, "/tables", map[string]int{"number": 4, "capacity": 6})
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Table created successfully", resp.Message)
	var table models.Table
	decode(t, resp.Data, &table)
	assert.Equal(t, models.StatusAvailable, table.Status)
	assert.Equal(t, 6, table.Capacity)

	code, _ = env.do(t, http.MethodPost, "/tables", map[string]int{"number": 4, "capacity": 2})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPost, "/tables", map[string]int{"number": 5})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetAllTables(t *testing.T) {
	env := setupTableRouter(t)
	numbers := make([]int, 0, 23)
	for i := 1; i <= 23; i++ {
		numbers = append(numbers, i)
	}
	env.seed(t, numbers...)

	code, resp := env.do(t, http.MethodGet, "/tables?page=3&page_size=10", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "List of tables", resp.Message)

	var view struct {
		Items      []models.Table `json:"items"`
		Total      int            `json:"total"`
		TotalPages int            `json:"total_pages"`
		Sort       struct {
			Key       string `json:"key"`
			Direction string `json:"direction"`
		} `json:"sort"`
	}
	decode(t, resp.Data, &view)
	assert.Len(t, view.Items, 3)
	assert.Equal(t, 23, view.Total)
	assert.Equal(t, 3, view.TotalPages)
	assert.Equal(t, "number", view.Sort.Key)
	assert.Equal(t, "asc", view.Sort.Direction)

	code, resp = env.do(t, http.MethodGet, "/tables?sort=number&select=number&page_size=5", nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, resp.Data, &view)
	assert.Equal(t, "desc", view.Sort.Direction)
	require.NotEmpty(t, view.Items)
	assert.Equal(t, 23, view.Items[0].Number)

	code, resp = env.do(t, http.MethodGet, "/tables?search=1&capacity=3", nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, resp.Data, &view)
	for _, table := range view.Items {
		assert.Contains(t, fmt.Sprint(table.Number), "1")
		assert.GreaterOrEqual(t, table.Capacity, 3)
	}
}

func TestGetAllTablesRejectsBadQuery(t *testing.T) {
	env := setupTableRouter(t)

	for _, url := range []string{
		"/tables?colour=red",
		"/tables?status=dirty",
		"/tables?sort=price",
		"/tables?direction=sideways",
		"/tables?page=-1",
		"/tables?capacity=abc",
	} {
		code, resp := env.do(t, http.MethodGet, url, nil)
		assert.Equal(t, http.StatusBadRequest, code, url)
		assert.False(t, resp.Status, url)
	}
}

func TestGetTableByID(t *testing.T) {
	env := setupTableRouter(t)
	tables := env.seed(t, 1)

	code, resp := env.do(t, http.MethodGet, fmt.Sprintf("/tables/%d", tables[0].ID), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table detail", resp.Message)

	code, _ = env.do(t, http.MethodGet, "/tables/999", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodGet, "/tables/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	env := setupTableRouter(t)
	id := env.seed(t, 1)[0].ID
	base := fmt.Sprintf("/tables/%d", id)

	code, resp := env.do(t, http.MethodPost, base+"/reserve", map[string]string{"customer_name": "Rina", "contact": "0812"})
	require.Equal(t, http.StatusOK, code, resp.Message)
	assert.Equal(t, "Table reserved", resp.Message)

	code, _ = env.do(t, http.MethodPost, base+"/reserve", map[string]string{"customer_name": "Budi"})
	assert.Equal(t, http.StatusConflict, code)

	code, resp = env.do(t, http.MethodPost, base+"/cancel-reservation", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Reservation cancelled", resp.Message)

	code, resp = env.do(t, http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Session started", resp.Message)
	var table models.Table
	decode(t, resp.Data, &table)
	assert.Equal(t, models.StatusOccupied, table.Status)
	require.NotNil(t, table.CurrentSessionStart)

	code, _ = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, resp = env.do(t, http.MethodPost, base+"/end", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Session ended", resp.Message)

	code, resp = env.do(t, http.MethodGet, base+"/sessions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table sessions", resp.Message)
	var logs []models.SessionLog
	decode(t, resp.Data, &logs)
	assert.Len(t, logs, 1)

	code, _ = env.do(t, http.MethodPost, base+"/end", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, resp = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table deleted", resp.Message)

	code, _ = env.do(t, http.MethodGet, base+"/sessions", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUpdateTableStatus(t *testing.T) {
	env := setupTableRouter(t)
	id := env.seed(t, 1)[0].ID
	url := fmt.Sprintf("/tables/%d/status", id)

	code, resp := env.do(t, http.MethodPatch, url, map[string]string{"status": "occupied"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table status updated", resp.Message)
	var table models.Table
	decode(t, resp.Data, &table)
	assert.Equal(t, models.StatusOccupied, table.Status)

	code, _ = env.do(t, http.MethodPatch, url, map[string]string{"status": "occupied"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPatch, url, map[string]string{"status": "cleaning"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPatch, url, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPatch, url, map[string]string{"status": "available"})
	require.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodPatch, url, map[string]interface{}{
		"status":      "reserved",
		"reservation": map[string]string{"customer_name": "Dewi"},
	})
	assert.Equal(t, http.StatusOK, code)
}

func TestUpdateExpectedEndTime(t *testing.T) {
	env := setupTableRouter(t)
	id := env.seed(t, 1)[0].ID
	url := fmt.Sprintf("/tables/%d/expected-end", id)

	code, _ := env.do(t, http.MethodPatch, url, map[string]interface{}{"expected_end_time": time.Now().Add(time.Hour)})
	assert.Equal(t, http.StatusConflict, code, "table is not occupied")

	code, _ = env.do(t, http.MethodPost, fmt.Sprintf("/tables/%d/start", id), nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodPatch, url, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPatch, url, map[string]interface{}{"expected_end_time": time.Now().Add(-time.Hour)})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, resp := env.do(t, http.MethodPatch, url, map[string]interface{}{
		"expected_end_time": time.Now().Add(time.Hour),
		"notify_customers":  true,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Expected end time updated", resp.Message)
	var result services.TimeUpdateResult
	decode(t, resp.Data, &result)
	assert.True(t, result.Notified)
	assert.NotNil(t, result.Table.ExpectedEndTime)

	code, resp = env.do(t, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, code)
	var notifs []models.Notification
	decode(t, resp.Data, &notifs)
	require.Len(t, notifs, 1)
	assert.Equal(t, "noop", notifs[0].Channel)

	code, resp = env.do(t, http.MethodGet, fmt.Sprintf("/notifications/%d", notifs[0].ID), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Notification detail", resp.Message)

	code, _ = env.do(t, http.MethodGet, "/notifications/42", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProgressAndStats(t *testing.T) {
	env := setupTableRouter(t)
	tables := env.seed(t, 1, 2)
	ctx := context.Background()

	_, err := env.engine.StartSession(ctx, tables[0].ID)
	require.NoError(t, err)
	_, err = env.engine.SetExpectedEndTime(ctx, tables[0].ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	code, resp := env.do(t, http.MethodGet, fmt.Sprintf("/tables/%d/progress", tables[0].ID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table progress", resp.Message)
	var progress services.TableProgress
	decode(t, resp.Data, &progress)
	assert.GreaterOrEqual(t, progress.Progress, 0)
	assert.Less(t, progress.Progress, 100)
	assert.Positive(t, progress.RemainingSeconds)

	code, resp = env.do(t, http.MethodGet, "/tables/progress", nil)
	require.Equal(t, http.StatusOK, code)
	var all []services.TableProgress
	decode(t, resp.Data, &all)
	assert.Len(t, all, 2)

	code, resp = env.do(t, http.MethodGet, "/tables/stats", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table stats", resp.Message)
	var stats services.TableStats
	decode(t, resp.Data, &stats)
	assert.Equal(t, 1, stats.Occupied)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 2, stats.Total)

	code, resp = env.do(t, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "All sessions", resp.Message)
}

func TestGetTransitions(t *testing.T) {
	env := setupTableRouter(t)

	code, resp := env.do(t, http.MethodGet, "/tables/transitions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table transitions", resp.Message)
	var edges []models.Transition
	decode(t, resp.Data, &edges)
	assert.Len(t, edges, 5)
	assert.Contains(t, edges, models.Transition{From: models.StatusOccupied, Event: models.EventEndSession, To: models.StatusAvailable})
}

func TestGetPublicTablesHidesReservation(t *testing.T) {
	env := setupTableRouter(t)
	id := env.seed(t, 5)[0].ID

	code, resp := env.do(t, http.MethodPost, fmt.Sprintf("/tables/%d/reserve", id), map[string]string{
		"customer_name": "Jane Doe",
		"contact":       "+62-811-555",
	})
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, resp = env.do(t, http.MethodGet, "/board", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "List of tables", resp.Message)
	assert.NotContains(t, string(resp.Data), "Jane Doe")
	assert.NotContains(t, string(resp.Data), "+62-811-555")

	var view struct {
		Items []map[string]interface{} `json:"items"`
		Total int                      `json:"total"`
	}
	decode(t, resp.Data, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Total)
	assert.Equal(t, string(models.StatusReserved), view.Items[0]["status"])
	assert.NotContains(t, view.Items[0], "reservation")

	code, resp = env.do(t, http.MethodGet, "/tables", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), "Jane Doe", "staff listing keeps the full record")
}

func TestTableQueryPaging(t *testing.T) {
	tests := []struct {
		name  string
		query controllers.TableQuery
		want  services.Page
	}{
		{"defaults", controllers.TableQuery{}, services.Page{Page: 1, PageSize: 10}},
		{"explicit", controllers.TableQuery{Page: 3, PageSize: 25}, services.Page{Page: 3, PageSize: 25}},
		{"capped", controllers.TableQuery{Page: 2, PageSize: 500}, services.Page{Page: 2, PageSize: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Paging())
		})
	}
}
