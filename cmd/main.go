package main

import (
  "context"
  "fmt"
  "os"
  "time"
  "github.com/safetylink/coraudit-backend/internal/logger"
  "github.com/safetylink/coraudit-backend/internal/utils"
  "github.com/safetylink/coraudit-backend/internal/db"
  "github.com/safetylink/coraudit-backend/internal/observability"
  "github.com/safetylink/coraudit-backend/internal/repos"
  "github.com/safetylink/coraudit-backend/internal/services"
  "github.com/safetylink/coraudit-backend/internal/handlers"
  "github.com/safetylink/coraudit-backend/internal/middleware"
  "github.com/safetylink/coraudit-backend/internal/server"
  "github.com/safetylink/coraudit-backend/internal/sse"
  "github.com/safetylink/coraudit-backend/internal/compliance"
  redisclient "github.com/safetylink/coraudit-backend/internal/clients/redis"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

  // Tracing
  otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "coraudit-backend",
    Environment: os.Getenv("APP_ENV"),
    Version:     os.Getenv("APP_VERSION"),
  })
  if otelShutdown != nil {
    defer func() {
      shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = otelShutdown(shutdownCtx)
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  companyRepo := repos.NewCompanyRepo(thePG, log)
  evidenceRepo := repos.NewEvidenceRepo(thePG, log)
  personnelRepo := repos.NewPersonnelRepo(thePG, log)
  actionPlanRepo := repos.NewActionPlanRepo(thePG, log)
  snapshotRepo := repos.NewSnapshotRepo(thePG, log)

  // SSE
  log.Info("Setting up SSE hub now...")
  sseHub := sse.NewHub(log)

  // Redis snapshot cache (optional, scores fall back to postgres)
  var snapshotCache redisclient.SnapshotCache
  snapshotCache, err = redisclient.NewSnapshotCache(log)
  if err != nil {
    log.Warn("Snapshot cache unavailable, serving scores from postgres", "error", err)
    snapshotCache = nil
  }
  if snapshotCache != nil {
    defer snapshotCache.Close()
  }

  // Services
  log.Info("Setting up Services from main...")
  cfg := compliance.DefaultConfig()
  authService := services.NewAuthService(thePG, log, userRepo, companyRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  evidenceService := services.NewEvidenceService(thePG, log, evidenceRepo, snapshotCache)
  personnelService := services.NewPersonnelService(thePG, log, personnelRepo)
  complianceService := services.NewComplianceService(thePG, log, evidenceService, snapshotRepo, snapshotCache, sseHub, cfg)
  actionPlanService := services.NewActionPlanService(thePG, log, actionPlanRepo, personnelRepo, complianceService, cfg, sseHub)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  evidenceHandler := handlers.NewEvidenceHandler(evidenceService)
  personnelHandler := handlers.NewPersonnelHandler(personnelService)
  complianceHandler := handlers.NewComplianceHandler(complianceService)
  actionPlanHandler := handlers.NewActionPlanHandler(actionPlanService)
  sseHandler := handlers.NewSSEHandler(sseHub)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:       authHandler,
    AuthMiddleware:    authMiddleware,
    EvidenceHandler:   evidenceHandler,
    PersonnelHandler:  personnelHandler,
    ComplianceHandler: complianceHandler,
    ActionPlanHandler: actionPlanHandler,
    SSEHandler:        sseHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
