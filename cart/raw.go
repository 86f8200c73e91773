package cart

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// EntryFromRaw decodes a loosely-shaped cart entry as returned by older API
// versions. The product may be an embedded object or a bare id; numeric
// fields may arrive as numbers or strings. Anything unparseable becomes zero.
func EntryFromRaw(raw map[string]any) Entry {
	var e Entry
	e.ID = cast.ToString(first(raw, "id", "_id"))
	e.Quantity = toQuantity(first(raw, "quantity", "qty"))

	switch p := first(raw, "product", "productId", "product_id").(type) {
	case map[string]any:
		e.Product = Product{
			ID:       cast.ToString(first(p, "id", "_id")),
			OwnerID:  cast.ToString(first(p, "owner_id", "ownerId", "owner")),
			Name:     cast.ToString(p["name"]),
			Price:    parsePrice(p["price"]),
			ImageURL: cast.ToString(first(p, "image_url", "image")),
		}
	case nil:
	default:
		e.Product.ID = cast.ToString(p)
	}
	e.Product.ID = strings.TrimSpace(e.Product.ID)
	return e
}

// EntriesFromRaw decodes a list of raw entries, preserving order.
func EntriesFromRaw(raw []map[string]any) []Entry {
	out := make([]Entry, 0, len(raw))
	for _, r := range raw {
		out = append(out, EntryFromRaw(r))
	}
	return out
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// toQuantity reads strings as base-10 numbers ("010" is 10, "2.0" is 2);
// other types go through cast.
func toQuantity(v any) int {
	s, ok := v.(string)
	if !ok {
		return cast.ToInt(v)
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}

func parsePrice(v any) decimal.Decimal {
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
