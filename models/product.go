package models

import (
	"strconv"
	"time"

	"bakeryapi/cart"

	"github.com/shopspring/decimal"
)

// Product is a bakery item listed by an owner
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OwnerID     uint            `gorm:"index;not null" json:"owner_id"`
	CategoryID  uint            `gorm:"index" json:"category_id"`
	Name        string          `gorm:"size:160;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	ImageURL    string          `gorm:"size:512" json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductInput holds data for creating/updating a product
type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"min=0"`
	CategoryID  uint            `json:"category_id"`
	ImageURL    string          `json:"image_url"`
}

// Snapshot is the read-only view of the product embedded in cart lines.
func (p Product) Snapshot() cart.Product {
	return cart.Product{
		ID:       FormatID(p.ID),
		OwnerID:  FormatID(p.OwnerID),
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}

// FormatID renders a numeric key the way the API exposes it in cart lines.
func FormatID(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID is the inverse of FormatID. It returns 0 for anything invalid.
func ParseID(s string) uint {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}
