package catalog

import (
	"net/url"
	"testing"
	"time"

	"bakeryapi/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func products() []models.Product {
	return []models.Product{
		{ID: 1, OwnerID: 1, CategoryID: 1, Name: "Baguette", Price: decimal.RequireFromString("3.00"), Stock: 10, CreatedAt: base},
		{ID: 2, OwnerID: 1, CategoryID: 2, Name: "Cheesecake", Description: "baked cream cheese", Price: decimal.RequireFromString("18.00"), Stock: 0, CreatedAt: base.Add(time.Hour)},
		{ID: 3, OwnerID: 2, CategoryID: 1, Name: "rye loaf", Price: decimal.RequireFromString("5.50"), Stock: 4, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, OwnerID: 2, CategoryID: 3, Name: "Almond croissant", Price: decimal.RequireFromString("3.00"), Stock: 12, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func ids(ps []models.Product) []uint {
	out := make([]uint, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestApplyDefaultsToNewestFirst(t *testing.T) {
	assert.Equal(t, []uint{4, 3, 2, 1}, ids(Apply(products(), Query{})))
}

func TestApplySortsByPriceStably(t *testing.T) {
	assert.Equal(t, []uint{1, 4, 3, 2}, ids(Apply(products(), Query{Sort: SortPriceAsc})))
	assert.Equal(t, []uint{2, 3, 1, 4}, ids(Apply(products(), Query{Sort: SortPriceDesc})))
}

func TestApplySortsByNameCaseInsensitive(t *testing.T) {
	assert.Equal(t, []uint{4, 1, 2, 3}, ids(Apply(products(), Query{Sort: SortName})))
}

func TestApplyFilters(t *testing.T) {
	ps := products()

	assert.Equal(t, []uint{3, 1}, ids(Apply(ps, Query{CategoryID: 1})))
	assert.Equal(t, []uint{4, 3}, ids(Apply(ps, Query{OwnerID: 2})))
	assert.Equal(t, []uint{2}, ids(Apply(ps, Query{Search: "CREAM"})))
	assert.Equal(t, []uint{4, 3, 1}, ids(Apply(ps, Query{InStock: true})))

	lo, hi := decimal.RequireFromString("3.50"), decimal.RequireFromString("20")
	assert.Equal(t, []uint{3, 2}, ids(Apply(ps, Query{MinPrice: &lo, MaxPrice: &hi})))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	ps := products()
	Apply(ps, Query{Sort: SortPriceDesc})
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(ps))
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(url.Values{
		"category":  {"2"},
		"sort":      {"price_desc"},
		"search":    {" tart "},
		"min_price": {"1.5"},
		"in_stock":  {"true"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(2), q.CategoryID)
	assert.Equal(t, SortPriceDesc, q.Sort)
	assert.Equal(t, "tart", q.Search)
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, "1.5", q.MinPrice.String())
	assert.Nil(t, q.MaxPrice)
	assert.True(t, q.InStock)

	_, err = ParseQuery(url.Values{"sort": {"random"}})
	assert.Error(t, err)
	_, err = ParseQuery(url.Values{"category": {"bread"}})
	assert.Error(t, err)
	_, err = ParseQuery(url.Values{"max_price": {"cheap"}})
	assert.Error(t, err)
}
