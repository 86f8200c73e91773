package models

import (
	"time"
)

// DeliveryAddress represents a customer's saved delivery address
type DeliveryAddress struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	RecipientName string    `gorm:"size:120;not null" json:"recipient_name"`
	Phone         string    `gorm:"size:32;not null" json:"phone"`
	Line1         string    `gorm:"size:255;not null" json:"line1"`
	Line2         string    `gorm:"size:255" json:"line2,omitempty"`
	City          string    `gorm:"size:120;not null" json:"city"`
	PostalCode    string    `gorm:"size:16;not null" json:"postal_code"`
	IsDefault     bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DeliveryAddressInput is used for creating/updating addresses
type DeliveryAddressInput struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Line1         string `json:"line1" binding:"required"`
	Line2         string `json:"line2"`
	City          string `json:"city" binding:"required"`
	PostalCode    string `json:"postal_code" binding:"required"`
	IsDefault     bool   `json:"is_default"`
}

// Apply copies the input onto an address.
func (in DeliveryAddressInput) Apply(a *DeliveryAddress) {
	a.RecipientName = in.RecipientName
	a.Phone = in.Phone
	a.Line1 = in.Line1
	a.Line2 = in.Line2
	a.City = in.City
	a.PostalCode = in.PostalCode
	a.IsDefault = in.IsDefault
}

// OneLine formats the address for order snapshots and notifications.
func (a DeliveryAddress) OneLine() string {
	s := a.RecipientName + ", " + a.Line1
	if a.Line2 != "" {
		s += ", " + a.Line2
	}
	return s + ", " + a.City + " " + a.PostalCode + " (" + a.Phone + ")"
}
