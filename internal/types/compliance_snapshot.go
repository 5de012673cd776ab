package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// ComplianceSnapshot is a cached evaluation result. Scores are always
// recomputable from evidence; snapshots exist so dashboards don't pay the
// aggregation cost on every read.
type ComplianceSnapshot struct {
  ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CompanyID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
  OverallPercentage int            `gorm:"column:overall_percentage;not null" json:"overall_percentage"`
  OverallStatus     string         `gorm:"column:overall_status;not null" json:"overall_status"`
  Payload           datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
  EvaluatedAt       time.Time      `gorm:"column:evaluated_at;not null" json:"evaluated_at"`
  CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (ComplianceSnapshot) TableName() string { return "compliance_snapshot" }
