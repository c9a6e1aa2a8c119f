package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStock(t *testing.T) {
	tests := []struct {
		raw  string
		want Stock
	}{
		{"5", BoundedStock(5)},
		{" 12 ", BoundedStock(12)},
		{"3.9", BoundedStock(3)},
		{"0", BoundedStock(0)},
		{"", UnboundedStock},
		{"plenty", UnboundedStock},
		{"ten", UnboundedStock},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStock(tt.raw), "raw=%q", tt.raw)
	}
}

func TestStock_Covers(t *testing.T) {
	assert.False(t, BoundedStock(3).Covers(5))
	assert.True(t, BoundedStock(5).Covers(5))
	assert.False(t, BoundedStock(0).Covers(0))
	assert.True(t, ParseStock("lots").Covers(1_000_000))
}

func TestStock_TakeAndPut(t *testing.T) {
	s := BoundedStock(5).Take(2)
	assert.Equal(t, BoundedStock(3), s)
	assert.Equal(t, "3", s.Raw())
	assert.Equal(t, BoundedStock(5), s.Put(2))
	assert.Equal(t, UnboundedStock, UnboundedStock.Take(10))
}

func TestStock_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Q Stock `json:"q"`
	}{UnboundedStock})
	require.NoError(t, err)
	assert.JSONEq(t, `{"q":null}`, string(b))

	var s Stock
	require.NoError(t, json.Unmarshal([]byte(`"7"`), &s))
	assert.Equal(t, BoundedStock(7), s)
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 99.50 ")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("99.5").Equal(p))

	_, err = ParsePrice("-1")
	assert.Error(t, err)
	_, err = ParsePrice("cheap")
	assert.Error(t, err)

	neg := decimal.NewFromInt(-3)
	assert.True(t, NonNegativeOrZero(&neg).IsZero())
	assert.True(t, NonNegativeOrZero(nil).IsZero())
}

func TestProduct_PublishFlag(t *testing.T) {
	flag := func(s string) *string { return &s }

	assert.True(t, (&Product{AddToSellPost: flag(" NO ")}).Withdrawn())
	assert.False(t, (&Product{AddToSellPost: flag("nope")}).Withdrawn())
	assert.False(t, (&Product{}).Withdrawn())
	assert.True(t, (&Product{AddToSellPost: flag("Yes")}).Listed())
	assert.False(t, (&Product{}).Listed())
}

func TestNewPageInfo(t *testing.T) {
	p := NewPageRequest(3, 10, 10)
	info := NewPageInfo(p, 25)
	assert.Equal(t, 3, info.TotalPages)
	assert.False(t, info.HasNextPage)
	assert.True(t, info.HasPrevPage)

	clamped := NewPageRequest(0, 500, 10)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, MaxPageLimit, clamped.Limit)
	assert.Equal(t, 0, clamped.Offset())
}
