package services

import (
  "context"
  "errors"
  "strings"
  "testing"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/realblock/realblock-backend/internal/apierr"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/types"
)

type tokenTestEnv struct {
  service    TokenService
  gdb        *gorm.DB
  user       types.User
  property   types.Property
}

func newTokenTestEnv(t *testing.T, kycVerified bool) *tokenTestEnv {
  t.Helper()
  gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
  if err != nil {
    t.Fatalf("failed to open sqlite: %v", err)
  }
  if err := gdb.AutoMigrate(&types.User{}, &types.Property{}, &types.Transaction{}); err != nil {
    t.Fatalf("failed to migrate: %v", err)
  }
  log, err := logger.New("production")
  if err != nil {
    t.Fatalf("failed to init logger: %v", err)
  }

  user := types.User{ID: uuid.New(), Email: "buyer@realblock.com", Password: "x", Name: "Buyer", IsKycVerified: kycVerified}
  if err := gdb.Create(&user).Error; err != nil {
    t.Fatalf("failed to seed user: %v", err)
  }
  property := types.Property{
    ID:            uuid.New(),
    Name:          "Tower A",
    Location:      "Mumbai",
    Type:          types.PropertyCommercial,
    PricePerSqft:  10000,
    MinInvestment: 50000,
    TotalSqft:     100,
    SqftSold:      90,
    Status:        types.PropertyOpen,
  }
  if err := gdb.Create(&property).Error; err != nil {
    t.Fatalf("failed to seed property: %v", err)
  }

  service := NewTokenService(
    gdb,
    repos.NewUserRepo(gdb, log),
    repos.NewPropertyRepo(gdb, log),
    repos.NewTransactionRepo(gdb, log),
    log,
  )
  return &tokenTestEnv{service: service, gdb: gdb, user: user, property: property}
}

func TestPurchase_RequiresKyc(t *testing.T) {
  env := newTokenTestEnv(t, false)

  _, err := env.service.Purchase(context.Background(), env.user.ID, env.property.ID, 60000)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Status != 403 || apiErr.Code != "KYC_REQUIRED" {
    t.Fatalf("expected 403 KYC_REQUIRED, got %v", err)
  }

  var txCount int64
  if err := env.gdb.Model(&types.Transaction{}).Count(&txCount).Error; err != nil {
    t.Fatalf("count failed: %v", err)
  }
  if txCount != 0 {
    t.Fatalf("gated purchase must not create a transaction")
  }
}

func TestPurchase_HappyPath(t *testing.T) {
  env := newTokenTestEnv(t, true)

  result, err := env.service.Purchase(context.Background(), env.user.ID, env.property.ID, 60000)
  if err != nil {
    t.Fatalf("purchase failed: %v", err)
  }
  if result.Transaction.Status != types.TransactionCompleted {
    t.Fatalf("expected COMPLETED transaction, got %s", result.Transaction.Status)
  }
  if result.Transaction.Sqft != 6 {
    t.Fatalf("expected 6 sqft at 10000/sqft, got %v", result.Transaction.Sqft)
  }
  if !strings.HasPrefix(result.TxHash, "0x") || len(result.TxHash) != 66 {
    t.Fatalf("expected 0x-prefixed 64-hex hash, got %q", result.TxHash)
  }

  var property types.Property
  if err := env.gdb.Where("id = ?", env.property.ID).First(&property).Error; err != nil {
    t.Fatalf("failed to read property: %v", err)
  }
  if property.SqftSold != 96 {
    t.Fatalf("expected sqft_sold incremented to 96, got %v", property.SqftSold)
  }

  var user types.User
  if err := env.gdb.Where("id = ?", env.user.ID).First(&user).Error; err != nil {
    t.Fatalf("failed to read user: %v", err)
  }
  if user.TotalInvestment != 60000 {
    t.Fatalf("expected total investment 60000, got %v", user.TotalInvestment)
  }
}

func TestPurchase_BelowMinimumRejected(t *testing.T) {
  env := newTokenTestEnv(t, true)
  _, err := env.service.Purchase(context.Background(), env.user.ID, env.property.ID, 100)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != "BELOW_MIN_INVESTMENT" {
    t.Fatalf("expected BELOW_MIN_INVESTMENT, got %v", err)
  }
}

func TestPurchase_InventoryExhausted(t *testing.T) {
  env := newTokenTestEnv(t, true)
  // 10 sqft remain; 150000 would buy 15.
  _, err := env.service.Purchase(context.Background(), env.user.ID, env.property.ID, 150000)
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) || apiErr.Code != "INSUFFICIENT_INVENTORY" {
    t.Fatalf("expected INSUFFICIENT_INVENTORY, got %v", err)
  }
}
