package routes

import (
	"net/http"
	"time"

	"convosched/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterDialogueRoutes sets up the endpoints for the dialogue engine.
func RegisterDialogueRoutes(r *gin.Engine, dh *handlers.DialogueHandler) {
	dialogueGroup := r.Group("/api/dialogue")
	{
		dialogueGroup.POST("/session", dh.StartSession)
		dialogueGroup.POST("/session/:sessionID/turn", dh.SubmitTurn)
		dialogueGroup.GET("/session/:sessionID", dh.GetSessionSummary)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "convosched is listening"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, dh *handlers.DialogueHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterDialogueRoutes(r, dh)
}
