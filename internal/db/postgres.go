package db

import (
  "fmt"
  "strings"
  "gorm.io/driver/postgres"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  "github.com/safetylink/coraudit-backend/internal/types"
  "github.com/safetylink/coraudit-backend/internal/utils"
  "github.com/safetylink/coraudit-backend/internal/logger"
)

type PostgresService struct {
  db       *gorm.DB
  log      *logger.Logger
  driver   string
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  driver := strings.ToLower(utils.GetEnv("DB_DRIVER", "postgres", log))

  var dialector gorm.Dialector
  switch driver {
  case "sqlite":
    // Local-dev fallback, no Postgres required.
    path := utils.GetEnv("SQLITE_PATH", "coraudit.db", log)
    dialector = sqlite.Open(path)
  default:
    driver = "postgres"
    postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
    postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
    postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
    postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
    postgresName := utils.GetEnv("POSTGRES_NAME", "coraudit", log)
    dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)
    dialector = postgres.Open(dsn)
  }

  log.Info("Connecting to database...", "driver", driver)
  db, err := gorm.Open(dialector, &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to database", "error", err)
    return nil, fmt.Errorf("Failed to connect to database: %w", err)
  }

  if driver == "postgres" {
    if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
      log.Error("Failed to enable uuid-ossp extension", "error", err)
      return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
    }
    log.Info("uuid-ossp extension enabled")
  }

  return &PostgresService{db: db, log: serviceLog, driver: driver}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating tables...")
  err := s.db.AutoMigrate(
    &types.Company{},
    &types.User{},
    &types.UserToken{},
    &types.EvidenceRecord{},
    &types.Personnel{},
    &types.ActionPlan{},
    &types.ActionPlanPhase{},
    &types.ActionPlanTask{},
    &types.ActionPlanSubtask{},
    &types.ComplianceSnapshot{},
  )
  if err != nil {
    s.log.Error("Auto migration failed", "error", err)
    return err
  }
  if s.driver != "postgres" {
    return nil
  }
  s.log.Info("Configuring constraints...")
  if err := s.db.Exec(`
    ALTER TABLE "user_token"
    DROP CONSTRAINT IF EXISTS "fk_user_token_user_id";
  `).Error; err != nil {
    return fmt.Errorf("Failed to reset fk_user_token_user_id: %w", err)
  }
  if err := s.db.Exec(`
    ALTER TABLE "user_token"
    ADD CONSTRAINT "fk_user_token_user_id"
    FOREIGN KEY ("user_id")
    REFERENCES "user"("id")
    ON DELETE CASCADE
  `).Error; err != nil {
    return fmt.Errorf("Failed to add fk_user_token_user_id: %w", err)
  }
  // At most one active plan per company. Concurrent regeneration requests
  // race on this index; the loser gets a unique violation instead of a
  // second "active" plan.
  if err := s.db.Exec(`
    CREATE UNIQUE INDEX IF NOT EXISTS "idx_action_plan_one_active"
    ON "action_plan" ("company_id")
    WHERE "status" = 'active' AND "deleted_at" IS NULL
  `).Error; err != nil {
    return fmt.Errorf("Failed to create idx_action_plan_one_active: %w", err)
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
