package model

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus tracks the order lifecycle. Only pending -> processing is
// advanced in this service (by the event consumer); later transitions
// belong to fulfillment.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a committed purchase, created atomically with the paired stock
// decrement.
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderNo   string `gorm:"size:64;uniqueIndex;not null" json:"order_no"`
	RequestID string `gorm:"size:64;uniqueIndex;not null" json:"request_id"`
	UserID    int64  `gorm:"not null;index" json:"user_id"`

	Category  Category `gorm:"size:32;not null" json:"category"`
	ProductID uint     `gorm:"not null;index" json:"product_id"`
	Size      string   `gorm:"size:16" json:"size"`
	Color     string   `gorm:"size:32" json:"color"`
	Quantity  int      `gorm:"not null;default:1" json:"quantity"`

	// TotalPrice = BasePrice*Quantity + DeliveryFee, fixed at creation.
	BasePrice      int64  `gorm:"not null" json:"base_price"`   // minor units
	DeliveryFee    int64  `gorm:"not null" json:"delivery_fee"` // minor units
	TotalPrice     int64  `gorm:"not null" json:"total_price"`  // minor units
	DeliveryOption string `gorm:"size:32;not null" json:"delivery_option"`
	SchoolName     string `gorm:"size:128;not null" json:"school_name"`

	Status OrderStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
}

func (Order) TableName() string { return "orders" }
