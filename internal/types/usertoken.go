package types

import (
  "time"

  "github.com/google/uuid"
)

type UserToken struct {
  ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
  AccessToken  string    `gorm:"column:access_token;not null;index" json:"-"`
  RefreshToken string    `gorm:"column:refresh_token;not null;uniqueIndex" json:"-"`
  ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
  CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (UserToken) TableName() string { return "user_token" }
