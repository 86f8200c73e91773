// Package catalog implements the product filters and sort selectors shared
// by the storefront and the owner dashboard.
package catalog

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"bakeryapi/apperr"
	"bakeryapi/models"

	"github.com/shopspring/decimal"
)

// Sort is a product ordering.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortName      Sort = "name"
)

// Query describes the selectors applied to a product list. Zero values mean
// "no constraint".
type Query struct {
	CategoryID uint
	OwnerID    uint
	Search     string
	Sort       Sort
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    bool
}

// ParseQuery reads selectors from request query parameters.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{Search: strings.TrimSpace(v.Get("search")), Sort: SortNewest}

	if s := v.Get("sort"); s != "" {
		switch Sort(s) {
		case SortNewest, SortPriceAsc, SortPriceDesc, SortName:
			q.Sort = Sort(s)
		default:
			return q, apperr.E(apperr.Invalid, "unknown sort")
		}
	}
	if s := v.Get("category"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return q, apperr.E(apperr.Invalid, "invalid category")
		}
		q.CategoryID = uint(id)
	}
	for key, dst := range map[string]**decimal.Decimal{"min_price": &q.MinPrice, "max_price": &q.MaxPrice} {
		if s := v.Get(key); s != "" {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return q, apperr.E(apperr.Invalid, "invalid "+strings.ReplaceAll(key, "_", " "))
			}
			*dst = &d
		}
	}
	q.InStock = v.Get("in_stock") == "true" || v.Get("in_stock") == "1"
	return q, nil
}

// Match reports whether a product passes every filter in q.
func (q Query) Match(p models.Product) bool {
	if q.CategoryID != 0 && p.CategoryID != q.CategoryID {
		return false
	}
	if q.OwnerID != 0 && p.OwnerID != q.OwnerID {
		return false
	}
	if q.InStock && p.Stock <= 0 {
		return false
	}
	if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

// Apply filters and sorts products. The input slice is not modified.
func Apply(products []models.Product, q Query) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q.Match(p) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, comparator(q.Sort))
	return out
}

func comparator(s Sort) func(a, b models.Product) int {
	switch s {
	case SortPriceAsc:
		return func(a, b models.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		return func(a, b models.Product) int { return b.Price.Cmp(a.Price) }
	case SortName:
		return func(a, b models.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	default:
		return func(a, b models.Product) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return int(b.ID) - int(a.ID)
		}
	}
}

// OrderClause is the SQL ORDER BY equivalent of the comparator for s,
// including the id tie-break that the stable sort gets from id-ordered input.
func OrderClause(s Sort) string {
	switch s {
	case SortPriceAsc:
		return "price ASC, id ASC"
	case SortPriceDesc:
		return "price DESC, id ASC"
	case SortName:
		return "LOWER(name) ASC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}
