package models

import (
	"time"
)

// Category groups products (breads, cakes, pastries...)
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:80;uniqueIndex;not null" json:"name"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryInput is used for adding/updating categories
type CategoryInput struct {
	Name         string `json:"name" binding:"required"`
	DisplayOrder int    `json:"display_order"`
}
