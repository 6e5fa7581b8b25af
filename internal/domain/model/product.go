package model

import (
	"time"

	"gorm.io/gorm"
)

// Price is stored in minor currency units (cents).
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null;check:chk_products_price,price >= 0" json:"price"`
	Stock       int64          `gorm:"not null;check:chk_products_stock,stock >= 0" json:"stock"`
	Category    string         `gorm:"type:varchar(100);not null;default:'';index" json:"category"`
	ImageURL    string         `gorm:"type:varchar(1000);not null;default:''" json:"image_url"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
