package model

import (
	"time"

	"gorm.io/gorm"
)

// School is the delivery destination referenced by orders.
type School struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"size:128;not null;uniqueIndex" json:"name"`
}

func (School) TableName() string { return "schools" }
