package routes

import (
	"net/http"
	"slices"

	"task-tracker-api/internal/config"
	"task-tracker-api/internal/handlers"
	"task-tracker-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg config.ServerConfig, h *handlers.Handler) *gin.Engine {
	handlers.RegisterValidation()

	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(cors(cfg.AllowedOrigins))

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", h.Login)
	}

	auth := middleware.JWTAuthMiddleware(h.Tokens)

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(auth)
	{
		// Session endpoints
		protectedRoutes.POST("/logout", h.Logout)
		protectedRoutes.GET("/me", h.Me)
		protectedRoutes.PUT("/view", h.SetView)

		// Views
		protectedRoutes.GET("/board", h.GetBoard)
		protectedRoutes.GET("/stats", h.GetStats)

		// Task endpoints
		protectedRoutes.GET("/tasks", h.GetTasks)
		protectedRoutes.GET("/tasks/:id", h.GetTaskByID)
		protectedRoutes.POST("/tasks", h.CreateTask)
		protectedRoutes.PUT("/tasks/:id", h.UpdateTask)
		protectedRoutes.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
		protectedRoutes.DELETE("/tasks/:id", h.DeleteTask)
		protectedRoutes.POST("/tasks/bulk/status", h.BulkUpdateStatus)
		protectedRoutes.POST("/tasks/bulk/delete", h.BulkDelete)
	}

	// WebSocket endpoint; browsers pass the token as ?token=
	ginRouter.GET("/ws", auth, h.WebSocket)

	return ginRouter
}

func cors(allowed []string) gin.HandlerFunc {
	wildcard := slices.Contains(allowed, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case wildcard:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(allowed, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
