package models

import (
	"time"

	"bakeryapi/cart"
)

// CartEntry is one add-to-cart action. Repeated actions for the same
// product create separate entries; they are merged on read.
type CartEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Raw converts the stored entry to the aggregator's input shape.
func (e CartEntry) Raw() cart.Entry {
	return cart.Entry{
		ID:       FormatID(e.ID),
		Product:  e.Product.Snapshot(),
		Quantity: e.Quantity,
	}
}

// RawEntries converts stored entries, keeping their order.
func RawEntries(entries []CartEntry) []cart.Entry {
	out := make([]cart.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Raw())
	}
	return out
}

// CartEntryInput holds data for adding an entry to the cart
type CartEntryInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CartQuantityInput sets the merged quantity of a product; 0 removes it
type CartQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// CartView is the cart as served to clients: the raw entries plus the
// merged lines and totals derived from them.
type CartView struct {
	Entries []CartEntry  `json:"entries"`
	Lines   []cart.Line  `json:"lines"`
	Summary cart.Summary `json:"summary"`
}

// NewCartView merges entries into display lines.
func NewCartView(entries []CartEntry) CartView {
	if entries == nil {
		entries = []CartEntry{}
	}
	lines := cart.Merge(RawEntries(entries))
	return CartView{Entries: entries, Lines: lines, Summary: cart.Totals(lines)}
}
