package types

import (
  "time"
  "github.com/google/uuid"
)

type PropertyType string

const (
  PropertyCommercial    PropertyType = "COMMERCIAL"
  PropertyWarehousing   PropertyType = "WAREHOUSING"
  PropertyResidential   PropertyType = "RESIDENTIAL"
)

type PropertyStatus string

const (
  PropertyOpen          PropertyStatus = "OPEN"
  PropertyFullyFunded   PropertyStatus = "FULLY_FUNDED"
)

type Property struct {
  ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
  Name            string          `gorm:"not null;column:name" json:"name"`
  Location        string          `gorm:"not null;column:location" json:"location"`
  Type            PropertyType    `gorm:"not null;column:type" json:"type"`
  Description     string          `gorm:"column:description" json:"description"`
  PricePerSqft    float64         `gorm:"not null;column:price_per_sqft" json:"price_per_sqft"`
  Yield           float64         `gorm:"not null;column:yield" json:"yield"`
  IRR             float64         `gorm:"not null;column:irr" json:"irr"`
  MinInvestment   float64         `gorm:"not null;column:min_investment" json:"min_investment"`
  AssetValue      float64         `gorm:"not null;column:asset_value" json:"asset_value"`
  Image           string          `gorm:"column:image" json:"image"`
  TotalSqft       float64         `gorm:"not null;column:total_sqft" json:"total_sqft"`
  SqftSold        float64         `gorm:"not null;default:0;column:sqft_sold" json:"sqft_sold"`
  Status          PropertyStatus  `gorm:"not null;default:'OPEN';column:status" json:"status"`
  IsFeatured      bool            `gorm:"not null;default:false;column:is_featured" json:"is_featured"`
  CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
  UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

func (Property) TableName() string {
  return "property"
}
