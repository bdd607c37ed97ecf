package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeItem_NullableFieldsStayNil(t *testing.T) {
	raw := []byte(`{
		"barcode": "7290000000001",
		"name": "Shampoo X",
		"price": 29.9,
		"unit_price_per100": null,
		"qty_unit": "400ml",
		"has_promo": false
	}`)
	var row searchRow
	require.NoError(t, json.Unmarshal(raw, &row))

	item := normalizeItem(row)
	assert.Equal(t, "7290000000001", item.Barcode)
	assert.Equal(t, "Shampoo X", item.Name)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("29.9")))
	assert.Nil(t, item.UnitPricePer100, "null unit price must stay nil, not become zero")
	require.NotNil(t, item.QtyUnit)
	assert.Equal(t, "400ml", *item.QtyUnit)
	assert.False(t, item.HasPromo)
	assert.Nil(t, item.RewardTypes)
}

func TestNormalizeItem_PromoFields(t *testing.T) {
	raw := []byte(`{
		"barcode": "1",
		"name": "Promo Soap",
		"price": 12.5,
		"has_promo": 1,
		"reward_types": "2 for 20"
	}`)
	var row searchRow
	require.NoError(t, json.Unmarshal(raw, &row))

	item := normalizeItem(row)
	assert.True(t, item.HasPromo, "integer 1 must decode as a set promo flag")
	require.NotNil(t, item.RewardTypes)
	assert.Equal(t, "2 for 20", *item.RewardTypes)
}

func TestPromoFlag_AcceptedEncodings(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{"null", false},
		{"2", true},
	}
	for _, tc := range cases {
		var f promoFlag
		require.NoError(t, json.Unmarshal([]byte(tc.in), &f), tc.in)
		assert.Equal(t, tc.want, bool(f), tc.in)
	}

	var f promoFlag
	assert.Error(t, json.Unmarshal([]byte(`"yes"`), &f))
}

func TestNormalizeHistory_TruncatesTimestampToDate(t *testing.T) {
	raw := []byte(`{"history":[{"observed_at":"2024-05-01T00:00:00Z","price":10,"unit_price_per100":250}]}`)
	var resp historyResponse
	require.NoError(t, json.Unmarshal(raw, &resp))

	history := normalizeHistory(resp.History)
	require.Len(t, history, 1)
	assert.Equal(t, "2024-05-01", history[0].Date)
	assert.True(t, history[0].Price.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, history[0].UnitPricePer100)
	assert.True(t, history[0].UnitPricePer100.Equal(decimal.NewFromInt(250)))
}

func TestNormalizeHistory_ShortTimestampKeepsPoint(t *testing.T) {
	rows := []observationRow{{ObservedAt: "bad", Price: decPtr("3.5")}}

	history := normalizeHistory(rows)
	require.Len(t, history, 1, "a point without a derivable date is kept, not dropped")
	assert.Empty(t, history[0].Date)
	assert.True(t, history[0].Price.Equal(decimal.RequireFromString("3.5")))
}

func TestNormalizeHistory_PreservesServerOrder(t *testing.T) {
	rows := []observationRow{
		{ObservedAt: "2024-05-03T00:00:00Z", Price: decPtr("3")},
		{ObservedAt: "2024-05-01T00:00:00Z", Price: decPtr("1")},
		{ObservedAt: "2024-05-02T00:00:00Z", Price: decPtr("2")},
	}

	history := normalizeHistory(rows)
	require.Len(t, history, 3)
	assert.Equal(t, "2024-05-03", history[0].Date)
	assert.Equal(t, "2024-05-01", history[1].Date)
	assert.Equal(t, "2024-05-02", history[2].Date)
}

func TestNormalizeDetail_MissingSectionsYieldZeroValues(t *testing.T) {
	detail := normalizeDetail(detailResponse{})
	require.NotNil(t, detail)
	assert.Empty(t, detail.Product.Barcode)
	assert.True(t, detail.CurrentPrice.Price.IsZero())
	assert.Nil(t, detail.CurrentPrice.UnitPricePer100)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
