package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

// EvidenceRecord is a normalized fact about something a company did: a
// submitted form, an uploaded document, a certification, an inspection or a
// training session. Records are produced by the capture side (form and
// document services) and are read-only inputs to the scoring engine.
type EvidenceRecord struct {
  ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CompanyID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
  Company        *Company       `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`
  Kind           string         `gorm:"column:kind;not null;index" json:"kind"`
  Category       string         `gorm:"column:category;not null;index" json:"category"`
  Title          string         `gorm:"column:title" json:"title"`
  ElementNumbers datatypes.JSON `gorm:"column:element_numbers;type:jsonb" json:"element_numbers"`
  Date           time.Time      `gorm:"column:date;not null" json:"date"`
  ExpiresAt      *time.Time     `gorm:"column:expires_at" json:"expires_at,omitempty"`
  Status         string         `gorm:"column:status;not null;default:valid" json:"status"`
  ReferenceID    string         `gorm:"column:reference_id;index" json:"reference_id"`
  CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (EvidenceRecord) TableName() string { return "evidence_record" }
