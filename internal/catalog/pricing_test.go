package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func tier(qty int, price int64) PriceTier {
	return PriceTier{MinQty: qty, Price: decimal.NewFromInt(price)}
}

func TestResolveTierPrice(t *testing.T) {
	base := decimal.NewFromInt(10)
	tiers := []PriceTier{tier(1, 10), tier(50, 8), tier(100, 6)}

	tests := []struct {
		name string
		qty  int
		want int64
	}{
		{"first tier", 1, 10},
		{"below second threshold", 49, 10},
		{"exactly at threshold", 50, 8},
		{"beyond last threshold", 150, 6},
		{"mid range", 99, 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveTierPrice(tc.qty, base, tiers)
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "qty %d: got %s", tc.qty, got)
		})
	}
}

func TestResolveTierPriceNoTiers(t *testing.T) {
	base := decimal.NewFromFloat(12.5)
	got := ResolveTierPrice(100, base, nil)
	assert.True(t, got.Equal(base))
}

func TestResolveTierPriceBelowAllThresholds(t *testing.T) {
	base := decimal.NewFromInt(20)
	tiers := []PriceTier{tier(10, 15), tier(100, 12)}
	got := ResolveTierPrice(5, base, tiers)
	assert.True(t, got.Equal(base))
}

func TestResolveTierPriceDuplicateThresholdDeterministic(t *testing.T) {
	base := decimal.NewFromInt(10)
	tiers := []PriceTier{tier(50, 8), tier(50, 7)}
	first := ResolveTierPrice(60, base, tiers)
	for i := 0; i < 10; i++ {
		assert.True(t, first.Equal(ResolveTierPrice(60, base, tiers)))
	}
}

func TestResolveTierPriceUnsortedInput(t *testing.T) {
	base := decimal.NewFromInt(10)
	tiers := []PriceTier{tier(100, 6), tier(1, 10), tier(50, 8)}
	assert.True(t, ResolveTierPrice(70, base, tiers).Equal(decimal.NewFromInt(8)))
}

func TestUnitPriceUsesMatchedSKUBase(t *testing.T) {
	p := &Product{
		Price: decimal.NewFromInt(10),
		SKUProps: []SKUProp{
			{Name: "Color", Values: []SKUValue{{ID: "c1"}, {ID: "c2"}}},
		},
		SKUs: []SKU{
			{PropIDs: []string{"c1"}, Price: decimal.NewFromInt(9), Stock: 5},
			{PropIDs: []string{"c2"}, Price: decimal.NewFromInt(11), Stock: 3},
		},
		PriceTiers: []PriceTier{tier(1, 10), tier(50, 8)},
	}

	// No selection: base price feeds tier resolution.
	assert.True(t, UnitPrice(p, nil, 1).Equal(decimal.NewFromInt(10)))

	// The matched SKU replaces the base price, but a qualifying tier still
	// wins: at qty 1 the MinQty 1 tier applies over the SKU price.
	sel := Selection{"Color": "c2"}
	assert.True(t, UnitPrice(p, sel, 1).Equal(decimal.NewFromInt(10)))
	assert.True(t, UnitPrice(p, sel, 50).Equal(decimal.NewFromInt(8)))

	// Without tiers the matched SKU price is the unit price.
	noTiers := &Product{
		Price:    p.Price,
		SKUProps: p.SKUProps,
		SKUs:     p.SKUs,
	}
	assert.True(t, UnitPrice(noTiers, sel, 1).Equal(decimal.NewFromInt(11)))
}
