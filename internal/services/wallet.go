package services

import (
  "context"
  "errors"
  "fmt"
  "net/http"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/realblock/realblock-backend/internal/apierr"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/types"
)

type WalletService interface {
  GetWallet(ctx context.Context, userID uuid.UUID) (*types.Wallet, error)
  Deposit(ctx context.Context, userID uuid.UUID, amount float64) (*types.Wallet, error)
  Withdraw(ctx context.Context, userID uuid.UUID, amount float64) (*types.Wallet, error)
}

type walletService struct {
  log       *logger.Logger
  db        *gorm.DB
  wallets   repos.WalletRepo
}

func NewWalletService(db *gorm.DB, wallets repos.WalletRepo, baseLog *logger.Logger) WalletService {
  return &walletService{
    log:     baseLog.With("service", "WalletService"),
    db:      db,
    wallets: wallets,
  }
}

// GetWallet lazily creates the wallet on first access.
func (ws *walletService) GetWallet(ctx context.Context, userID uuid.UUID) (*types.Wallet, error) {
  wallet, err := ws.wallets.GetByUserID(ctx, nil, userID)
  if err != nil {
    return nil, err
  }
  if wallet != nil {
    return wallet, nil
  }
  return ws.wallets.Create(ctx, nil, &types.Wallet{
    UserID:   userID,
    Balance:  0,
    Currency: "INR",
  })
}

func txReference() string {
  return fmt.Sprintf("TXN-%d-%s", time.Now().UTC().Unix(), uuid.NewString()[:8])
}

func (ws *walletService) Deposit(ctx context.Context, userID uuid.UUID, amount float64) (*types.Wallet, error) {
  if amount <= 0 {
    return nil, apierr.New(http.StatusBadRequest, "INVALID_AMOUNT", errors.New("amount must be positive"))
  }

  wallet, err := ws.GetWallet(ctx, userID)
  if err != nil {
    return nil, err
  }

  newBalance := wallet.Balance + amount
  err = ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := ws.wallets.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
      return err
    }
    _, err := ws.wallets.CreateTransaction(ctx, tx, &types.WalletTransaction{
      WalletID:  wallet.ID,
      Amount:    amount,
      Type:      types.WalletDeposit,
      Status:    "COMPLETED",
      Reference: txReference(),
    })
    return err
  })
  if err != nil {
    return nil, err
  }

  wallet.Balance = newBalance
  ws.log.Info("Wallet deposit", "user_id", userID, "amount", amount)
  return wallet, nil
}

func (ws *walletService) Withdraw(ctx context.Context, userID uuid.UUID, amount float64) (*types.Wallet, error) {
  if amount <= 0 {
    return nil, apierr.New(http.StatusBadRequest, "INVALID_AMOUNT", errors.New("amount must be positive"))
  }

  wallet, err := ws.GetWallet(ctx, userID)
  if err != nil {
    return nil, err
  }
  if wallet.Balance < amount {
    return nil, apierr.New(http.StatusBadRequest, "INSUFFICIENT_FUNDS", errors.New("insufficient wallet balance"))
  }

  newBalance := wallet.Balance - amount
  err = ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := ws.wallets.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
      return err
    }
    _, err := ws.wallets.CreateTransaction(ctx, tx, &types.WalletTransaction{
      WalletID:  wallet.ID,
      Amount:    amount,
      Type:      types.WalletWithdrawal,
      Status:    "COMPLETED",
      Reference: txReference(),
    })
    return err
  })
  if err != nil {
    return nil, err
  }

  wallet.Balance = newBalance
  ws.log.Info("Wallet withdrawal", "user_id", userID, "amount", amount)
  return wallet, nil
}
