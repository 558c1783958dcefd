package catalog

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ResolveTierPrice computes the effective unit price for a quantity.
// With no tiers the base price applies. Otherwise the tier with the largest
// threshold not exceeding the quantity wins; if every threshold exceeds the
// quantity the base price applies. Pure function: re-run on every quantity
// or SKU change, since the matched SKU feeds the base price.
func ResolveTierPrice(qty int, base decimal.Decimal, tiers []PriceTier) decimal.Decimal {
	if len(tiers) == 0 {
		return base
	}
	sorted := make([]PriceTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinQty > sorted[j].MinQty
	})
	for _, tier := range sorted {
		if tier.MinQty <= qty {
			return tier.Price
		}
	}
	return base
}

// UnitPrice resolves the displayed unit price for the current selection and
// quantity: the matched SKU overrides the base price, then quantity breaks
// apply on top.
func UnitPrice(p *Product, sel Selection, qty int) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	base := p.Price
	if sku, ok := MatchSKU(p.SKUs, sel); ok {
		base = sku.Price
	}
	return ResolveTierPrice(qty, base, p.PriceTiers)
}
