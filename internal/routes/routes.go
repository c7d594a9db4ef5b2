package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/board"
	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
	"taskboard/internal/realtime"
	"taskboard/internal/store"
)

// Deps are the board components the router serves.
type Deps struct {
	Store *store.Store
	Board *board.Controller
	Hub   *realtime.Hub
}

func SetupRoutes(d Deps) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS())

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task board is running",
			"seeded":  d.Store.Seeded(),
			"version": d.Store.Version(),
			"viewers": d.Hub.Len(),
		})
	})

	taskHandler := handlers.NewTaskHandler(d.Store, d.Board)
	boardHandler := handlers.NewBoardHandler(d.Store, d.Board)
	realtimeHandler := handlers.NewRealtimeHandler(d.Hub, d.Store)

	api := ginRouter.Group("/api")
	{
		// Task endpoints
		api.GET("/tasks", taskHandler.GetTasks)
		api.GET("/tasks/:id", taskHandler.GetTaskByID)
		api.POST("/tasks", taskHandler.CreateTask)
		api.PUT("/tasks/:id", taskHandler.UpdateTask)
		api.PATCH("/tasks/:id/status", taskHandler.UpdateTaskStatus)
		api.GET("/tasks/:id/status-options", taskHandler.GetStatusOptions)
		api.DELETE("/tasks/:id", taskHandler.DeleteTask)

		// Board and drag gesture endpoints
		api.GET("/board", boardHandler.GetBoard)
		api.POST("/board/reset", boardHandler.ResetBoard)
		api.GET("/drag", boardHandler.GetDrag)
		api.POST("/drag/start", boardHandler.StartDrag)
		api.POST("/drag/over", boardHandler.OverDrag)
		api.POST("/drag/end", boardHandler.EndDrag)
		api.POST("/drag/cancel", boardHandler.CancelDrag)
	}

	ginRouter.GET("/ws", realtimeHandler.WebSocket)

	return ginRouter
}
