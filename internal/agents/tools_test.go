package agents

import (
  "context"
  "encoding/json"
  "math"
  "strings"
  "testing"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/types"
)

func newTestDeps(t *testing.T) (Deps, *gorm.DB) {
  t.Helper()
  gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
  if err != nil {
    t.Fatalf("failed to open sqlite: %v", err)
  }
  if err := gdb.AutoMigrate(
    &types.User{},
    &types.Property{},
    &types.Transaction{},
    &types.Wallet{},
  ); err != nil {
    t.Fatalf("failed to migrate: %v", err)
  }
  log, err := logger.New("production")
  if err != nil {
    t.Fatalf("failed to init logger: %v", err)
  }
  deps := Deps{
    Properties:   repos.NewPropertyRepo(gdb, log),
    Transactions: repos.NewTransactionRepo(gdb, log),
    Wallets:      repos.NewWalletRepo(gdb, log),
    Log:          log,
  }
  return deps, gdb
}

func seedProperty(t *testing.T, gdb *gorm.DB, name, location string, pType types.PropertyType, description string) types.Property {
  t.Helper()
  p := types.Property{
    ID:            uuid.New(),
    Name:          name,
    Location:      location,
    Type:          pType,
    Description:   description,
    PricePerSqft:  12000,
    Yield:         8.5,
    IRR:           14.2,
    MinInvestment: 100000,
    AssetValue:    50000000,
    TotalSqft:     10000,
    Status:        types.PropertyOpen,
  }
  if err := gdb.Create(&p).Error; err != nil {
    t.Fatalf("failed to seed property: %v", err)
  }
  return p
}

func TestRunSearchProperties_TypeFallsBackToSubstring(t *testing.T) {
  deps, gdb := newTestDeps(t)
  seedProperty(t, gdb, "Prestige Tech Park", "Bangalore", types.PropertyCommercial, "Grade A office space in Whitefield")
  seedProperty(t, gdb, "Sunset Villas", "Goa", types.PropertyResidential, "Beachfront holiday homes")

  out := runSearchProperties(context.Background(), deps, map[string]any{"type": "Office"})
  if strings.Contains(out, "No properties found") {
    t.Fatalf("expected substring fallback to match description, got %q", out)
  }
  var cards []map[string]any
  if err := json.Unmarshal([]byte(out), &cards); err != nil {
    t.Fatalf("expected JSON card list, got %q", out)
  }
  if len(cards) != 1 || cards[0]["name"] != "Prestige Tech Park" {
    t.Fatalf("unexpected search result: %v", cards)
  }
}

func TestRunSearchProperties_ExactTypeMatch(t *testing.T) {
  deps, gdb := newTestDeps(t)
  seedProperty(t, gdb, "Prestige Tech Park", "Bangalore", types.PropertyCommercial, "Grade A office space")
  seedProperty(t, gdb, "Sunset Villas", "Goa", types.PropertyResidential, "Beachfront homes")

  out := runSearchProperties(context.Background(), deps, map[string]any{"type": "commercial"})
  var cards []map[string]any
  if err := json.Unmarshal([]byte(out), &cards); err != nil {
    t.Fatalf("expected JSON card list, got %q", out)
  }
  if len(cards) != 1 || cards[0]["type"] != "COMMERCIAL" {
    t.Fatalf("unexpected search result: %v", cards)
  }
}

func TestRunSearchProperties_NoResultsMessage(t *testing.T) {
  deps, _ := newTestDeps(t)
  out := runSearchProperties(context.Background(), deps, map[string]any{"location": "Mars"})
  if out != "No properties found matching your criteria." {
    t.Fatalf("unexpected no-results message: %q", out)
  }
}

func TestRunGetPortfolioStats_EmptyPortfolio(t *testing.T) {
  deps, gdb := newTestDeps(t)
  userID := uuid.New()
  if err := gdb.Create(&types.Wallet{ID: uuid.New(), UserID: userID, Balance: 2500, Currency: "INR"}).Error; err != nil {
    t.Fatalf("failed to seed wallet: %v", err)
  }

  out := runGetPortfolioStats(context.Background(), deps, userID)
  var stats map[string]any
  if err := json.Unmarshal([]byte(out), &stats); err != nil {
    t.Fatalf("expected JSON stats, got %q", out)
  }
  if stats["message"] != "No active investments found." {
    t.Fatalf("expected empty-portfolio message, got %v", stats["message"])
  }
  if stats["walletBalance"].(float64) != 2500 {
    t.Fatalf("expected wallet balance 2500, got %v", stats["walletBalance"])
  }
}

func TestRunGetPortfolioStats_TotalsAndPayout(t *testing.T) {
  deps, gdb := newTestDeps(t)
  userID := uuid.New()
  p1 := seedProperty(t, gdb, "Tower A", "Mumbai", types.PropertyCommercial, "office")
  p2 := seedProperty(t, gdb, "Tower B", "Pune", types.PropertyCommercial, "office")
  for _, tx := range []types.Transaction{
    {ID: uuid.New(), UserID: userID, PropertyID: p1.ID, Amount: 300000, Sqft: 25, PricePerSqft: 12000, Status: types.TransactionCompleted},
    {ID: uuid.New(), UserID: userID, PropertyID: p2.ID, Amount: 150000, Sqft: 12.5, PricePerSqft: 12000, Status: types.TransactionCompleted},
    {ID: uuid.New(), UserID: userID, PropertyID: p1.ID, Amount: 99999, Sqft: 8, PricePerSqft: 12000, Status: types.TransactionPending},
  } {
    if err := gdb.Create(&tx).Error; err != nil {
      t.Fatalf("failed to seed transaction: %v", err)
    }
  }

  out := runGetPortfolioStats(context.Background(), deps, userID)
  var stats map[string]any
  if err := json.Unmarshal([]byte(out), &stats); err != nil {
    t.Fatalf("expected JSON stats, got %q", out)
  }
  if stats["totalInvestment"].(float64) != 450000 {
    t.Fatalf("pending transactions must not count; got total %v", stats["totalInvestment"])
  }
  if stats["propertiesCount"].(float64) != 2 {
    t.Fatalf("expected 2 distinct properties, got %v", stats["propertiesCount"])
  }
  expectedPayout := math.Floor(450000 * 0.08 / 12)
  if stats["estimatedMonthlyPayout"].(float64) != expectedPayout {
    t.Fatalf("expected payout %v, got %v", expectedPayout, stats["estimatedMonthlyPayout"])
  }
}

func TestRunGetPortfolioStats_MissingUserID(t *testing.T) {
  deps, _ := newTestDeps(t)
  out := runGetPortfolioStats(context.Background(), deps, uuid.Nil)
  if !strings.Contains(out, "User ID is missing") {
    t.Fatalf("expected missing-user message, got %q", out)
  }
}
