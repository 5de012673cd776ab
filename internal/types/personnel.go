package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

type Personnel struct {
  ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
  Company   *Company       `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`
  Name      string         `gorm:"column:name;not null" json:"name"`
  Role      string         `gorm:"column:role" json:"role"`
  Position  string         `gorm:"column:position" json:"position"`
  Email     string         `gorm:"column:email" json:"email"`
  CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Personnel) TableName() string { return "personnel" }
