package services

import (
  "context"
  "crypto/rand"
  "encoding/hex"
  "errors"
  "net/http"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/realblock/realblock-backend/internal/apierr"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/types"
)

type PurchaseResult struct {
  Transaction   *types.Transaction  `json:"transaction"`
  TxHash        string              `json:"tx_hash"`
}

type TokenService interface {
  Purchase(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID, amount float64) (*PurchaseResult, error)
}

type tokenService struct {
  log            *logger.Logger
  db             *gorm.DB
  users          repos.UserRepo
  properties     repos.PropertyRepo
  transactions   repos.TransactionRepo
}

func NewTokenService(
  db *gorm.DB,
  users repos.UserRepo,
  properties repos.PropertyRepo,
  transactions repos.TransactionRepo,
  baseLog *logger.Logger,
) TokenService {
  return &tokenService{
    log:          baseLog.With("service", "TokenService"),
    db:           db,
    users:        users,
    properties:   properties,
    transactions: transactions,
  }
}

// Purchases settle on-chain in the full product; until that ships the
// hash is simulated so clients can build against the final shape.
func simulatedTxHash() string {
  b := make([]byte, 32)
  if _, err := rand.Read(b); err != nil {
    return "0x" + hex.EncodeToString(make([]byte, 32))
  }
  return "0x" + hex.EncodeToString(b)
}

func (ts *tokenService) Purchase(ctx context.Context, userID uuid.UUID, propertyID uuid.UUID, amount float64) (*PurchaseResult, error) {
  user, err := ts.users.GetByID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if user == nil {
    return nil, apierr.New(http.StatusUnauthorized, "USER_NOT_FOUND", errors.New("user not found"))
  }
  if !user.IsKycVerified {
    return nil, apierr.New(http.StatusForbidden, "KYC_REQUIRED", errors.New("complete KYC verification before purchasing tokens"))
  }

  property, err := ts.properties.GetByID(ctx, nil, propertyID)
  if err != nil {
    return nil, err
  }
  if property == nil {
    return nil, apierr.New(http.StatusNotFound, "PROPERTY_NOT_FOUND", errors.New("property not found"))
  }
  if property.Status != types.PropertyOpen {
    return nil, apierr.New(http.StatusBadRequest, "PROPERTY_CLOSED", errors.New("property is not open for investment"))
  }
  if amount < property.MinInvestment {
    return nil, apierr.New(http.StatusBadRequest, "BELOW_MIN_INVESTMENT", errors.New("amount is below the minimum investment"))
  }

  sqft := amount / property.PricePerSqft
  if property.SqftSold+sqft > property.TotalSqft {
    return nil, apierr.New(http.StatusBadRequest, "INSUFFICIENT_INVENTORY", errors.New("not enough square footage remaining"))
  }

  var transactionRow *types.Transaction
  err = ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    row, err := ts.transactions.Create(ctx, tx, &types.Transaction{
      UserID:       userID,
      PropertyID:   propertyID,
      Amount:       amount,
      Sqft:         sqft,
      PricePerSqft: property.PricePerSqft,
      Status:       types.TransactionCompleted,
    })
    if err != nil {
      return err
    }
    transactionRow = row
    return ts.properties.IncrementSqftSold(ctx, tx, propertyID, sqft)
  })
  if err != nil {
    return nil, err
  }

  if err := ts.users.UpdateTotalInvestment(ctx, nil, userID, user.TotalInvestment+amount); err != nil {
    ts.log.Warn("Failed to update total investment", "user_id", userID, "error", err)
  }

  ts.log.Info("Token purchase completed", "user_id", userID, "property_id", propertyID, "amount", amount)
  return &PurchaseResult{Transaction: transactionRow, TxHash: simulatedTxHash()}, nil
}
