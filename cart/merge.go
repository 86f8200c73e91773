// Package cart collapses raw cart entries into one display line per product.
//
// The backend stores one entry per add-to-cart action, so a customer who
// taps "Order Now" twice on the same loaf has two entries. Merge turns those
// into a single line with the summed quantity and a recomputed subtotal. It
// is pure and total: it never fails and running it on its own output yields
// the same lines.
package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the snapshot of a product embedded in a cart entry. It is owned
// by the server and never modified here.
type Product struct {
	ID       string          `json:"id"`
	OwnerID  string          `json:"owner_id,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
}

// Entry is one raw cart record.
type Entry struct {
	ID       string  `json:"id,omitempty"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Line is a merged cart row, keyed by product id.
type Line struct {
	Key        string          `json:"key"`
	Product    Product         `json:"product"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Entry converts a merged line back into a single raw entry.
func (l Line) Entry() Entry {
	p := l.Product
	p.Price = l.UnitPrice
	return Entry{Product: p, Quantity: l.Quantity}
}

// PricePolicy decides which entry's price a merged line uses when duplicate
// entries for a product disagree.
type PricePolicy int

const (
	// FirstSeen keeps the price of the first entry in input order.
	FirstSeen PricePolicy = iota
	// LatestSeen takes the price (and snapshot) of the last entry.
	LatestSeen
)

// Merge aggregates entries with the FirstSeen price policy.
func Merge(entries []Entry) []Line {
	return MergeWith(entries, FirstSeen)
}

// MergeWith aggregates entries into lines ordered by the first occurrence of
// each product id. Entries without a product id are skipped. Negative
// quantities and prices count as zero.
func MergeWith(entries []Entry, policy PricePolicy) []Line {
	lines := make([]Line, 0, len(entries))
	index := make(map[string]int, len(entries))

	for _, e := range entries {
		key := strings.TrimSpace(e.Product.ID)
		if key == "" {
			continue
		}
		qty := e.Quantity
		if qty < 0 {
			qty = 0
		}
		price := e.Product.Price
		if price.IsNegative() {
			price = decimal.Zero
		}

		i, ok := index[key]
		if !ok {
			p := e.Product
			p.ID = key
			p.Price = price
			index[key] = len(lines)
			lines = append(lines, Line{Key: key, Product: p, Quantity: qty, UnitPrice: price})
			continue
		}

		lines[i].Quantity += qty
		if policy == LatestSeen {
			p := e.Product
			p.ID = key
			p.Price = price
			lines[i].Product = p
			lines[i].UnitPrice = price
		}
	}

	for i := range lines {
		lines[i].TotalPrice = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
	}
	return lines
}

// Summary holds the derived cart totals shown under the table.
type Summary struct {
	Lines  int             `json:"lines"`
	Items  int             `json:"items"`
	Amount decimal.Decimal `json:"amount"`
}

// Empty reports whether there is nothing to show, in which case the UI
// renders the "Start Shopping" call to action instead of a table.
func (s Summary) Empty() bool { return s.Lines == 0 }

// Totals sums merged lines.
func Totals(lines []Line) Summary {
	s := Summary{Lines: len(lines), Amount: decimal.Zero}
	for _, l := range lines {
		s.Items += l.Quantity
		s.Amount = s.Amount.Add(l.TotalPrice)
	}
	return s
}

// OwnerGroup is the slice of a merged cart sold by a single bakery.
type OwnerGroup struct {
	OwnerID  string          `json:"owner_id"`
	Lines    []Line          `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// GroupByOwner splits lines per owner, keeping first-occurrence order for
// both owners and lines. Lines with zero quantity are dropped.
func GroupByOwner(lines []Line) []OwnerGroup {
	var groups []OwnerGroup
	index := make(map[string]int)
	for _, l := range lines {
		if l.Quantity == 0 {
			continue
		}
		i, ok := index[l.Product.OwnerID]
		if !ok {
			i = len(groups)
			index[l.Product.OwnerID] = i
			groups = append(groups, OwnerGroup{OwnerID: l.Product.OwnerID, Subtotal: decimal.Zero})
		}
		groups[i].Lines = append(groups[i].Lines, l)
		groups[i].Subtotal = groups[i].Subtotal.Add(l.TotalPrice)
	}
	return groups
}
