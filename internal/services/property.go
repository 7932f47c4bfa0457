package services

import (
  "context"
  "encoding/json"
  "errors"
  "net/http"
  "time"

  "github.com/google/uuid"
  "github.com/redis/go-redis/v9"

  "github.com/realblock/realblock-backend/internal/apierr"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/types"
)

const (
  propertyListCacheKey = "properties:all"
  propertyListCacheTTL = 60 * time.Second
)

type PropertyService interface {
  GetAll(ctx context.Context) ([]*types.Property, error)
  GetFeatured(ctx context.Context) ([]*types.Property, error)
  GetByID(ctx context.Context, propertyID uuid.UUID) (*types.Property, error)
}

type propertyService struct {
  log          *logger.Logger
  properties   repos.PropertyRepo
  cache        *redis.Client
}

// cache may be nil; the service degrades to direct reads.
func NewPropertyService(properties repos.PropertyRepo, cache *redis.Client, baseLog *logger.Logger) PropertyService {
  return &propertyService{
    log:        baseLog.With("service", "PropertyService"),
    properties: properties,
    cache:      cache,
  }
}

func (ps *propertyService) GetAll(ctx context.Context) ([]*types.Property, error) {
  if ps.cache != nil {
    cached, err := ps.cache.Get(ctx, propertyListCacheKey).Result()
    if err == nil && cached != "" {
      var result []*types.Property
      if uErr := json.Unmarshal([]byte(cached), &result); uErr == nil {
        return result, nil
      }
    } else if err != nil && !errors.Is(err, redis.Nil) {
      ps.log.Warn("Property cache read failed", "error", err)
    }
  }

  result, err := ps.properties.GetAll(ctx, nil)
  if err != nil {
    return nil, err
  }

  if ps.cache != nil {
    if b, mErr := json.Marshal(result); mErr == nil {
      if sErr := ps.cache.Set(ctx, propertyListCacheKey, b, propertyListCacheTTL).Err(); sErr != nil {
        ps.log.Warn("Property cache write failed", "error", sErr)
      }
    }
  }
  return result, nil
}

func (ps *propertyService) GetFeatured(ctx context.Context) ([]*types.Property, error) {
  return ps.properties.GetFeatured(ctx, nil, 3)
}

func (ps *propertyService) GetByID(ctx context.Context, propertyID uuid.UUID) (*types.Property, error) {
  property, err := ps.properties.GetByID(ctx, nil, propertyID)
  if err != nil {
    return nil, err
  }
  if property == nil {
    return nil, apierr.New(http.StatusNotFound, "PROPERTY_NOT_FOUND", errors.New("property not found"))
  }
  return property, nil
}
