package model

import (
	"time"

	"gorm.io/gorm"
)

// StockItem is the authoritative quantity-on-hand record for one
// (product, size) pair within a partition.
type StockItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Category Category `gorm:"size:32;not null;index" json:"category"`
	Name     string   `gorm:"size:128;not null" json:"name"`
	SchoolID uint     `gorm:"index" json:"school_id"`
	Size     string   `gorm:"size:16;not null" json:"size"`
	Color    string   `gorm:"size:32" json:"color"`
	Quality  string   `gorm:"size:32" json:"quality"`
	ImageURL string   `gorm:"size:255" json:"image_url"`

	// Quantity never goes negative; the only writer is the placement
	// engine's conditional decrement.
	Quantity  int64 `gorm:"not null;default:0" json:"quantity"`
	UnitPrice int64 `gorm:"not null" json:"unit_price"` // minor units
}

func (StockItem) TableName() string { return "stock_items" }
