package types

import (
  "time"
  "github.com/google/uuid"
)

type User struct {
  ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  Email             string        `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password          string        `gorm:"column:password" json:"-"`
  Name              string        `gorm:"column:name" json:"name"`
  IsKycVerified     bool          `gorm:"not null;default:false;column:is_kyc_verified" json:"is_kyc_verified"`
  TotalInvestment   float64       `gorm:"not null;default:0;column:total_investment" json:"total_investment"`
  CreatedAt         time.Time     `gorm:"not null" json:"created_at"`
  UpdatedAt         time.Time     `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
  return "user"
}
