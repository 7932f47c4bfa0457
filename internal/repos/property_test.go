package repos

import (
  "context"
  "testing"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/types"
)

func newPropertyTestRepo(t *testing.T) (PropertyRepo, *gorm.DB) {
  t.Helper()
  gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
  if err != nil {
    t.Fatalf("failed to open sqlite: %v", err)
  }
  if err := gdb.AutoMigrate(&types.Property{}); err != nil {
    t.Fatalf("failed to migrate: %v", err)
  }
  log, err := logger.New("production")
  if err != nil {
    t.Fatalf("failed to init logger: %v", err)
  }
  return NewPropertyRepo(gdb, log), gdb
}

func seedSearchProperties(t *testing.T, gdb *gorm.DB) {
  t.Helper()
  properties := []types.Property{
    {ID: uuid.New(), Name: "Prestige Tech Park", Location: "Bangalore", Type: types.PropertyCommercial, Description: "Grade A office space", PricePerSqft: 12000, TotalSqft: 10000, Status: types.PropertyOpen},
    {ID: uuid.New(), Name: "Sunset Villas", Location: "Goa", Type: types.PropertyResidential, Description: "Beachfront holiday homes", PricePerSqft: 9000, TotalSqft: 8000, Status: types.PropertyOpen},
    {ID: uuid.New(), Name: "Logix Hub", Location: "Mumbai", Type: types.PropertyWarehousing, Description: "Cold storage warehousing", PricePerSqft: 6000, TotalSqft: 30000, Status: types.PropertyOpen},
  }
  for i := range properties {
    if err := gdb.Create(&properties[i]).Error; err != nil {
      t.Fatalf("failed to seed property: %v", err)
    }
  }
}

func TestSearch_KnownTypeMatchesEnum(t *testing.T) {
  repo, gdb := newPropertyTestRepo(t)
  seedSearchProperties(t, gdb)

  results, err := repo.Search(context.Background(), nil, PropertySearchFilter{Type: "residential"}, 5)
  if err != nil {
    t.Fatalf("search failed: %v", err)
  }
  if len(results) != 1 || results[0].Name != "Sunset Villas" {
    t.Fatalf("unexpected results: %v", results)
  }
}

func TestSearch_UnknownTypeFallsBackToText(t *testing.T) {
  repo, gdb := newPropertyTestRepo(t)
  seedSearchProperties(t, gdb)

  results, err := repo.Search(context.Background(), nil, PropertySearchFilter{Type: "Office"}, 5)
  if err != nil {
    t.Fatalf("search failed: %v", err)
  }
  if len(results) != 1 || results[0].Name != "Prestige Tech Park" {
    t.Fatalf("expected description substring match, got %v", results)
  }
}

func TestSearch_LocationSubstringCaseInsensitive(t *testing.T) {
  repo, gdb := newPropertyTestRepo(t)
  seedSearchProperties(t, gdb)

  results, err := repo.Search(context.Background(), nil, PropertySearchFilter{Location: "banga"}, 5)
  if err != nil {
    t.Fatalf("search failed: %v", err)
  }
  if len(results) != 1 || results[0].Location != "Bangalore" {
    t.Fatalf("unexpected results: %v", results)
  }
}

func TestSearch_GeneralQueryOnlyWhenNoOtherFilters(t *testing.T) {
  repo, gdb := newPropertyTestRepo(t)
  seedSearchProperties(t, gdb)

  results, err := repo.Search(context.Background(), nil, PropertySearchFilter{Query: "warehousing"}, 5)
  if err != nil {
    t.Fatalf("search failed: %v", err)
  }
  if len(results) != 1 || results[0].Name != "Logix Hub" {
    t.Fatalf("unexpected results: %v", results)
  }

  // Query is ignored once a location filter is present.
  results, err = repo.Search(context.Background(), nil, PropertySearchFilter{Query: "warehousing", Location: "goa"}, 5)
  if err != nil {
    t.Fatalf("search failed: %v", err)
  }
  if len(results) != 1 || results[0].Name != "Sunset Villas" {
    t.Fatalf("location filter should win, got %v", results)
  }
}

func TestSearch_LimitApplied(t *testing.T) {
  repo, gdb := newPropertyTestRepo(t)
  seedSearchProperties(t, gdb)

  results, err := repo.Search(context.Background(), nil, PropertySearchFilter{Query: "a"}, 2)
  if err != nil {
    t.Fatalf("search failed: %v", err)
  }
  if len(results) > 2 {
    t.Fatalf("expected at most 2 results, got %d", len(results))
  }
}

func TestIncrementSqftSold(t *testing.T) {
  repo, gdb := newPropertyTestRepo(t)
  p := types.Property{ID: uuid.New(), Name: "Tower", Location: "Pune", Type: types.PropertyCommercial, PricePerSqft: 10000, TotalSqft: 1000, SqftSold: 100, Status: types.PropertyOpen}
  if err := gdb.Create(&p).Error; err != nil {
    t.Fatalf("failed to seed: %v", err)
  }

  if err := repo.IncrementSqftSold(context.Background(), nil, p.ID, 25); err != nil {
    t.Fatalf("increment failed: %v", err)
  }
  updated, err := repo.GetByID(context.Background(), nil, p.ID)
  if err != nil {
    t.Fatalf("get failed: %v", err)
  }
  if updated.SqftSold != 125 {
    t.Fatalf("expected 125 sqft sold, got %v", updated.SqftSold)
  }
}
