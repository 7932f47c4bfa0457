package types

import (
  "time"
  "github.com/google/uuid"
)

type WalletTxType string

const (
  WalletDeposit      WalletTxType = "DEPOSIT"
  WalletWithdrawal   WalletTxType = "WITHDRAWAL"
)

type Wallet struct {
  ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  UserID      uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
  Balance     float64       `gorm:"not null;default:0;column:balance" json:"balance"`
  Currency    string        `gorm:"not null;default:'INR';column:currency" json:"currency"`
  CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
  UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
}

func (Wallet) TableName() string {
  return "wallet"
}

type WalletTransaction struct {
  ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
  WalletID    uuid.UUID       `gorm:"type:uuid;index;not null;column:wallet_id" json:"wallet_id"`
  Amount      float64         `gorm:"not null;column:amount" json:"amount"`
  Type        WalletTxType    `gorm:"not null;column:type" json:"type"`
  Status      string          `gorm:"not null;column:status" json:"status"`
  Reference   string          `gorm:"column:reference" json:"reference"`
  CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

func (WalletTransaction) TableName() string {
  return "wallet_transaction"
}
