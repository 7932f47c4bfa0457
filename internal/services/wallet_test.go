package services

import (
  "context"
  "errors"
  "testing"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/realblock/realblock-backend/internal/apierr"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/types"
)

func newWalletTestService(t *testing.T) (WalletService, *gorm.DB) {
  t.Helper()
  gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
  if err != nil {
    t.Fatalf("failed to open sqlite: %v", err)
  }
  if err := gdb.AutoMigrate(&types.Wallet{}, &types.WalletTransaction{}); err != nil {
    t.Fatalf("failed to migrate: %v", err)
  }
  log, err := logger.New("production")
  if err != nil {
    t.Fatalf("failed to init logger: %v", err)
  }
  return NewWalletService(gdb, repos.NewWalletRepo(gdb, log), log), gdb
}

func TestGetWallet_LazyCreate(t *testing.T) {
  svc, _ := newWalletTestService(t)
  userID := uuid.New()

  wallet, err := svc.GetWallet(context.Background(), userID)
  if err != nil {
    t.Fatalf("get wallet failed: %v", err)
  }
  if wallet.Balance != 0 || wallet.Currency != "INR" {
    t.Fatalf("unexpected fresh wallet: %+v", wallet)
  }

  again, err := svc.GetWallet(context.Background(), userID)
  if err != nil {
    t.Fatalf("second get failed: %v", err)
  }
  if again.ID != wallet.ID {
    t.Fatalf("repeat get must return the same wallet")
  }
}

func TestDepositAndWithdraw(t *testing.T) {
  svc, gdb := newWalletTestService(t)
  userID := uuid.New()
  ctx := context.Background()

  wallet, err := svc.Deposit(ctx, userID, 5000)
  if err != nil {
    t.Fatalf("deposit failed: %v", err)
  }
  if wallet.Balance != 5000 {
    t.Fatalf("expected 5000, got %v", wallet.Balance)
  }

  wallet, err = svc.Withdraw(ctx, userID, 1500)
  if err != nil {
    t.Fatalf("withdraw failed: %v", err)
  }
  if wallet.Balance != 3500 {
    t.Fatalf("expected 3500, got %v", wallet.Balance)
  }

  var txCount int64
  if err := gdb.Model(&types.WalletTransaction{}).Count(&txCount).Error; err != nil {
    t.Fatalf("count failed: %v", err)
  }
  if txCount != 2 {
    t.Fatalf("expected 2 wallet transactions, got %d", txCount)
  }
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
  svc, gdb := newWalletTestService(t)
  userID := uuid.New()
  ctx := context.Background()

  if _, err := svc.Deposit(ctx, userID, 100); err != nil {
    t.Fatalf("deposit failed: %v", err)
  }

  _, err := svc.Withdraw(ctx, userID, 500)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != "INSUFFICIENT_FUNDS" {
    t.Fatalf("expected INSUFFICIENT_FUNDS, got %v", err)
  }

  // Failed withdrawal leaves no transaction record.
  var txCount int64
  if err := gdb.Model(&types.WalletTransaction{}).Count(&txCount).Error; err != nil {
    t.Fatalf("count failed: %v", err)
  }
  if txCount != 1 {
    t.Fatalf("expected only the deposit record, got %d", txCount)
  }
}

func TestDeposit_RejectsNonPositiveAmount(t *testing.T) {
  svc, _ := newWalletTestService(t)
  if _, err := svc.Deposit(context.Background(), uuid.New(), 0); err == nil {
    t.Fatalf("expected rejection of zero amount")
  }
  if _, err := svc.Deposit(context.Background(), uuid.New(), -50); err == nil {
    t.Fatalf("expected rejection of negative amount")
  }
}
