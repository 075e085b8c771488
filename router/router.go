package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-tables/controllers"
	"github.com/yeremiapane/cafe-tables/hub"
	"github.com/yeremiapane/cafe-tables/middlewares"
	"github.com/yeremiapane/cafe-tables/services"
	"github.com/yeremiapane/cafe-tables/store"
	"github.com/yeremiapane/cafe-tables/utils"
)

// Deps carries everything the routes need.
type Deps struct {
	Store       store.Store
	Engine      *services.SessionEngine
	Coordinator *services.TimeUpdateCoordinator
	Hub         *hub.Hub
	RateLimiter *middlewares.RateLimiter
	// CORSOrigin is a comma separated list; empty disables CORS and the
	// websocket origin check.
	CORSOrigin string
}

// NewDeps wires an engine and coordinator around st.
func NewDeps(st store.Store, h *hub.Hub, notifier services.Notifier) Deps {
	engine := services.NewSessionEngine(st, h)
	return Deps{
		Store:       st,
		Engine:      engine,
		Coordinator: services.NewTimeUpdateCoordinator(engine, notifier, st, h),
		Hub:         h,
	}
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := utils.ParseOrigins(deps.CORSOrigin)

	r.Use(middlewares.SecurityHeaders())
	if len(origins) > 0 {
		r.Use(middlewares.CORSMiddlewares(origins))
	}
	r.Use(middlewares.LoggerMiddleware())
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.RateLimit())
	}

	tableCtrl := controllers.NewTableController(deps.Engine, deps.Coordinator)
	sessionCtrl := controllers.NewSessionLogController(deps.Store)
	notificationCtrl := controllers.NewNotificationController(deps.Store)
	hubCtrl := controllers.NewHubController(deps.Hub, origins)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/tables", tableCtrl.GetPublicTables)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(), middlewares.RequireRoles("staff", "admin"))

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/progress", tableCtrl.GetAllProgress)
	auth.GET("/tables/stats", tableCtrl.GetDashboardStats)
	auth.GET("/tables/transitions", tableCtrl.GetTransitions)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.GET("/tables/:table_id/progress", tableCtrl.GetTableProgress)
	auth.GET("/tables/:table_id/sessions", sessionCtrl.GetTableSessions)

	actions := auth.Group("/tables")
	actions.Use(middlewares.TableActionLogger())
	{
		actions.POST("", tableCtrl.CreateTable)
		actions.DELETE("/:table_id", middlewares.RequireRoles("admin"), tableCtrl.DeleteTable)
		actions.POST("/:table_id/reserve", tableCtrl.ReserveTable)
		actions.POST("/:table_id/cancel-reservation", tableCtrl.CancelReservation)
		actions.POST("/:table_id/start", tableCtrl.StartSession)
		actions.POST("/:table_id/end", tableCtrl.EndSession)
		actions.PATCH("/:table_id/status", tableCtrl.UpdateTableStatus)
		actions.PATCH("/:table_id/expected-end", tableCtrl.UpdateExpectedEndTime)
	}

	// SESSION HISTORY
	auth.GET("/sessions", sessionCtrl.GetAllSessions)

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.GET("/notifications/:notif_id", notificationCtrl.GetNotificationByID)

	// WebSocket endpoint
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware(origins))
	{
		wsGroup.GET("/:role", hubCtrl.Serve)
	}

	return r
}
