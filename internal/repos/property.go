package repos

import (
  "context"
  "errors"
  "strings"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/types"
)

// PropertySearchFilter carries the raw strings the caller provided.
// Type is matched exactly against the property type enum when it
// normalizes to one; otherwise it degrades to a substring match on
// name/description. Location is always a substring match. Query is a
// general fallback across name/location/description used only when
// neither Type nor Location is set.
type PropertySearchFilter struct {
  Query      string
  Type       string
  Location   string
}

type PropertyRepo interface {
  GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Property, error)
  GetFeatured(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Property, error)
  GetByID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (*types.Property, error)
  Search(ctx context.Context, tx *gorm.DB, filter PropertySearchFilter, limit int) ([]*types.Property, error)
  IncrementSqftSold(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, sqft float64) error
}

type propertyRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPropertyRepo(db *gorm.DB, baseLog *logger.Logger) PropertyRepo {
  repoLog := baseLog.With("repo", "PropertyRepo")
  return &propertyRepo{db: db, log: repoLog}
}

func (pr *propertyRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Property, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Property
  if err := transaction.WithContext(ctx).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *propertyRepo) GetFeatured(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Property, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Property
  if err := transaction.WithContext(ctx).
    Where("is_featured = ?", true).
    Order("created_at DESC").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *propertyRepo) GetByID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (*types.Property, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var result types.Property
  if err := transaction.WithContext(ctx).Where("id = ?", propertyID).First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (pr *propertyRepo) IncrementSqftSold(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, sqft float64) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  return transaction.WithContext(ctx).
    Model(&types.Property{}).
    Where("id = ?", propertyID).
    Update("sqft_sold", gorm.Expr("sqft_sold + ?", sqft)).Error
}

func isKnownPropertyType(v string) bool {
  switch types.PropertyType(v) {
  case types.PropertyCommercial, types.PropertyWarehousing, types.PropertyResidential:
    return true
  default:
    return false
  }
}

// LOWER(...) LIKE keeps the substring matching portable between
// postgres and the sqlite used in tests.
func containsPattern(v string) string {
  return "%" + strings.ToLower(v) + "%"
}

func (pr *propertyRepo) Search(ctx context.Context, tx *gorm.DB, filter PropertySearchFilter, limit int) ([]*types.Property, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  q := transaction.WithContext(ctx).Model(&types.Property{})

  if filter.Type != "" {
    normalized := strings.ToUpper(strings.TrimSpace(filter.Type))
    if isKnownPropertyType(normalized) {
      q = q.Where("type = ?", normalized)
    } else {
      q = q.Where("LOWER(description) LIKE ? OR LOWER(name) LIKE ?",
        containsPattern(filter.Type), containsPattern(filter.Type))
    }
  }

  if filter.Location != "" {
    q = q.Where("LOWER(location) LIKE ?", containsPattern(filter.Location))
  }

  if filter.Type == "" && filter.Location == "" && filter.Query != "" {
    upperQuery := strings.ToUpper(strings.TrimSpace(filter.Query))
    if isKnownPropertyType(upperQuery) {
      q = q.Where("LOWER(name) LIKE ? OR LOWER(location) LIKE ? OR LOWER(description) LIKE ? OR type = ?",
        containsPattern(filter.Query), containsPattern(filter.Query), containsPattern(filter.Query), upperQuery)
    } else {
      q = q.Where("LOWER(name) LIKE ? OR LOWER(location) LIKE ? OR LOWER(description) LIKE ?",
        containsPattern(filter.Query), containsPattern(filter.Query), containsPattern(filter.Query))
    }
  }

  var results []*types.Property
  if err := q.Limit(limit).Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
