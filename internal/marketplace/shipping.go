package marketplace

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Per-destination shipping rate table. Costs are USD: a flat base plus a
// per-kilogram rate, with a delivery window in days.
type shippingRate struct {
	base  decimal.Decimal
	perKg decimal.Decimal
	days  int
}

var shippingRates = map[string]shippingRate{
	"US": {base: decimal.NewFromInt(50), perKg: decimal.NewFromInt(2), days: 20},
	"EU": {base: decimal.NewFromInt(60), perKg: decimal.NewFromFloat(2.5), days: 25},
	"UZ": {base: decimal.NewFromInt(40), perKg: decimal.NewFromFloat(1.5), days: 18},
}

var shippingRateDefault = shippingRate{base: decimal.NewFromInt(70), perKg: decimal.NewFromInt(3), days: 30}

var defaultItemWeightKg = decimal.NewFromFloat(0.5)

// EstimateShipping computes cost and ETA for shipping a quantity of one
// product to a destination. The item weight comes from the upstream detail
// record when reachable; if the aggregator fails, the estimate degrades to
// the standard-rate table instead of surfacing the error.
func (s *Service) EstimateShipping(ctx context.Context, req ShippingRequest) (*ShippingEstimate, error) {
	weight := defaultItemWeightKg
	method := "DHL/FedEx/EMS"

	item, err := s.fetchDetailForWeight(ctx, req.ProductID)
	if err != nil {
		method = "Standard International Shipping"
	} else if item != nil {
		if w := itemWeight(item); w.IsPositive() {
			weight = w
		}
	}

	rate, ok := shippingRates[req.Destination]
	if !ok {
		rate = shippingRateDefault
	}

	totalWeight := weight.Mul(decimal.NewFromInt(int64(req.Quantity)))
	cost := rate.base.Add(totalWeight.Mul(rate.perKg)).Round(2)

	return &ShippingEstimate{
		ProductID:         req.ProductID,
		Quantity:          req.Quantity,
		Destination:       req.Destination,
		ShippingCost:      cost,
		Currency:          "USD",
		EstimatedDelivery: rate.days,
		Details: ShippingDetails{
			BaseCost:       rate.base,
			PerKgCost:      rate.perKg,
			TotalWeight:    fmt.Sprintf("%skg", totalWeight.Round(2)),
			ShippingMethod: method,
		},
	}, nil
}

func (s *Service) fetchDetailForWeight(ctx context.Context, id string) (map[string]any, error) {
	if !numericID(id) {
		return nil, nil
	}
	return s.fetchDetail(ctx, id)
}

func itemWeight(item map[string]any) decimal.Decimal {
	switch w := item["weight"].(type) {
	case string:
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			return decimal.NewFromFloat(f)
		}
	case float64:
		return decimal.NewFromFloat(w)
	}
	return decimal.Zero
}
