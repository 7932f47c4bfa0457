package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

type OverallKycStatus string

const (
  KycNotStarted   OverallKycStatus = "NOT_STARTED"
  KycInProgress   OverallKycStatus = "IN_PROGRESS"
  KycCompleted    OverallKycStatus = "COMPLETED"
)

type VerificationType string

const (
  VerificationPan       VerificationType = "PAN"
  VerificationAadhaar   VerificationType = "AADHAAR"
  VerificationBank      VerificationType = "BANK"
)

type VerificationStatus string

const (
  VerificationInitiated   VerificationStatus = "INITIATED"
  VerificationPending     VerificationStatus = "PENDING"
  VerificationVerified    VerificationStatus = "VERIFIED"
  VerificationFailed      VerificationStatus = "FAILED"
)

// One profile per user, created lazily on the first verification
// attempt. OverallStatus and CompletedAt are owned by the completion
// check; nothing else writes them.
type KycProfile struct {
  ID              uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
  UserID          uuid.UUID           `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
  OverallStatus   OverallKycStatus    `gorm:"not null;default:'NOT_STARTED';column:overall_status" json:"overall_status"`
  CompletedAt     *time.Time          `gorm:"column:completed_at" json:"completed_at,omitempty"`
  Verifications   []KycVerification   `gorm:"foreignKey:ProfileID" json:"verifications,omitempty"`
  CreatedAt       time.Time           `gorm:"not null" json:"created_at"`
  UpdatedAt       time.Time           `gorm:"not null" json:"updated_at"`
}

func (KycProfile) TableName() string {
  return "kyc_profile"
}

// Multiple rows per (profile, type) are allowed; completion only cares
// whether a VERIFIED row of each type exists.
type KycVerification struct {
  ID              uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
  UserID          uuid.UUID           `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
  ProfileID       uuid.UUID           `gorm:"type:uuid;index;not null;column:profile_id" json:"profile_id"`
  Type            VerificationType    `gorm:"not null;column:type" json:"type"`
  Status          VerificationStatus  `gorm:"not null;column:status" json:"status"`
  ProviderRefID   *string             `gorm:"index;column:provider_ref_id" json:"provider_ref_id,omitempty"`
  Metadata        datatypes.JSON      `gorm:"column:metadata" json:"metadata,omitempty"`
  FailureReason   *string             `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
  CreatedAt       time.Time           `gorm:"not null" json:"created_at"`
  UpdatedAt       time.Time           `gorm:"not null" json:"updated_at"`
}

func (KycVerification) TableName() string {
  return "kyc_verification"
}
