package models

import (
	"time"

	"gorm.io/gorm"
)

type Consumable struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	Name            string  `json:"name" gorm:"index"`
	ArticleNumber   string  `json:"article_number" gorm:"uniqueIndex;size:64"`
	StockQuantity   float64 `json:"stock_quantity"`
	MinimumQuantity float64 `json:"minimum_quantity"`
	Unit            string  `json:"unit,omitempty" gorm:"size:32"`
	StorageLocation string  `json:"storage_location,omitempty"`
	Supplier        string  `json:"supplier,omitempty"`
	Notes           string  `json:"notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BelowMinimum reports whether stock dropped under the reorder threshold.
func (c *Consumable) BelowMinimum() bool {
	return c.MinimumQuantity > 0 && c.StockQuantity < c.MinimumQuantity
}
