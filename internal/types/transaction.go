package types

import (
  "time"
  "github.com/google/uuid"
)

type TransactionStatus string

const (
  TransactionCompleted   TransactionStatus = "COMPLETED"
  TransactionPending     TransactionStatus = "PENDING"
  TransactionFailed      TransactionStatus = "FAILED"
)

// Records a completed sqft purchase at a point-in-time price.
type Transaction struct {
  ID              uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
  UserID          uuid.UUID           `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
  PropertyID      uuid.UUID           `gorm:"type:uuid;index;not null;column:property_id" json:"property_id"`
  Property        *Property           `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
  Amount          float64             `gorm:"not null;column:amount" json:"amount"`
  Sqft            float64             `gorm:"not null;column:sqft" json:"sqft"`
  PricePerSqft    float64             `gorm:"not null;column:price_per_sqft" json:"price_per_sqft"`
  Status          TransactionStatus   `gorm:"not null;column:status" json:"status"`
  CreatedAt       time.Time           `gorm:"not null" json:"created_at"`
}

func (Transaction) TableName() string {
  return "transaction"
}
