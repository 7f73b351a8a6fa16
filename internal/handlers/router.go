package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const serviceName = "exercise-service"

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Exercise services.ExerciseService
	Content  services.ContentService
	Session  services.SessionService
	Export   services.ExportService
}

type HandlerManager struct {
	exerciseHandler *ExerciseHandler
	contentHandler  *ContentHandler
	sessionHandler  *SessionHandler
}

func NewHandlerManager(svc ServiceSet, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		exerciseHandler: NewExerciseHandler(svc.Exercise, logger),
		contentHandler:  NewContentHandler(svc.Content, logger),
		sessionHandler:  NewSessionHandler(svc.Session, svc.Export, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		exercises := v1.Group("/exercises")
		{
			exercises.POST("/validate", hm.exerciseHandler.ValidateAnswer)
			exercises.POST("/score", hm.exerciseHandler.CalculateScore)
			exercises.POST("/feedback", hm.exerciseHandler.GenerateFeedback)
			exercises.POST("/hint", hm.exerciseHandler.GetHint)
		}

		v1.POST("/difficulty/adapt", hm.exerciseHandler.AdaptDifficulty)

		contents := v1.Group("/contents")
		{
			contents.POST("", hm.contentHandler.CreateContent)
			contents.GET("", hm.contentHandler.ListContents)
			contents.POST("/generate", hm.contentHandler.GenerateContent)
			contents.POST("/generate/batch", hm.contentHandler.GenerateContentBatch)
			contents.GET("/:id", hm.contentHandler.GetContent)
			contents.DELETE("/:id", hm.contentHandler.DeleteContent)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/attempts", hm.sessionHandler.SubmitAttempt)
			sessions.GET("/:id/export", hm.sessionHandler.ExportSession)
		}

		v1.GET("/users/:user_id/sessions", hm.sessionHandler.ListUserSessions)
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
