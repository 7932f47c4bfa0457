package types

import (
  "time"
  "github.com/google/uuid"
)

type UserToken struct {
  ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  UserID          uuid.UUID     `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
  AccessToken     string        `gorm:"index;not null;column:access_token" json:"-"`
  RefreshToken    string        `gorm:"index;not null;column:refresh_token" json:"-"`
  ExpiresAt       time.Time     `gorm:"not null;column:expires_at" json:"expires_at"`
  CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
}

func (UserToken) TableName() string {
  return "user_token"
}
