package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/safetylink/coraudit-backend/internal/handlers"
  "github.com/safetylink/coraudit-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler       *handlers.AuthHandler
  AuthMiddleware    *middleware.AuthMiddleware
  EvidenceHandler   *handlers.EvidenceHandler
  PersonnelHandler  *handlers.PersonnelHandler
  ComplianceHandler *handlers.ComplianceHandler
  ActionPlanHandler *handlers.ActionPlanHandler
  SSEHandler        *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))
  router.Use(otelgin.Middleware("coraudit-backend"))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)

// ===============
// || Protected ||
// ===============
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)
  // SSE
  protected.GET("/sse/stream", cfg.SSEHandler.SSEStream)
  // Evidence
  protected.GET("/evidence", cfg.EvidenceHandler.List)
  protected.POST("/evidence", cfg.EvidenceHandler.Create)
  protected.DELETE("/evidence/:id", cfg.EvidenceHandler.Delete)
  // Personnel
  protected.GET("/personnel", cfg.PersonnelHandler.List)
  protected.POST("/personnel", cfg.PersonnelHandler.Create)
  protected.DELETE("/personnel/:id", cfg.PersonnelHandler.Delete)
  // Compliance
  protected.GET("/compliance/score", cfg.ComplianceHandler.GetScore)
  protected.POST("/compliance/recalculate", cfg.ComplianceHandler.Recalculate)
  protected.GET("/compliance/gaps", cfg.ComplianceHandler.GetGaps)
  protected.GET("/compliance/timeline", cfg.ComplianceHandler.GetTimeline)
  // Action plan
  protected.POST("/action-plan/generate", cfg.ActionPlanHandler.Generate)
  protected.GET("/action-plan", cfg.ActionPlanHandler.GetActive)
  protected.PATCH("/action-plan/tasks/:id", cfg.ActionPlanHandler.CompleteTask)
  protected.PATCH("/action-plan/subtasks/:id", cfg.ActionPlanHandler.CompleteSubtask)
  protected.DELETE("/action-plan", cfg.ActionPlanHandler.Cancel)

  return router
}
