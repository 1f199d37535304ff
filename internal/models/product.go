package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry. The catalog is the sole source of truth for
// product name and price when an order is placed.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=1000"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric"`
	Theme       string          `json:"theme" validate:"omitempty,max=50"`
	Sizes       []string        `json:"sizes" gorm:"serializer:json"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Rating      float64         `json:"rating" validate:"gte=0,lte=5"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	gorm.Model  `json:"-"`
}

// DefaultSizes is applied when a product is created without explicit sizes.
var DefaultSizes = []string{"Small", "Medium", "Large"}
