package marketplace

import (
	"github.com/shopspring/decimal"

	"github.com/optomall/optomall/internal/catalog"
)

// SearchRequest is the body of POST /api/alibaba/search.
type SearchRequest struct {
	Keyword  string   `json:"keyword" validate:"required"`
	PageNo   int      `json:"pageNo" validate:"omitempty,min=1"`
	PageSize int      `json:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy   string   `json:"sortBy" validate:"omitempty,oneof=price_asc price_desc relevance"`
	MinPrice *float64 `json:"minPrice" validate:"omitempty,min=0"`
	MaxPrice *float64 `json:"maxPrice" validate:"omitempty,min=0"`
	MinOrder int      `json:"minOrder" validate:"omitempty,min=0"`
}

func (r *SearchRequest) applyDefaults() {
	if r.PageNo <= 0 {
		r.PageNo = 1
	}
	if r.PageSize <= 0 {
		r.PageSize = 20
	}
}

// SearchResponse mirrors the storefront search envelope.
type SearchResponse struct {
	Products []catalog.Product
	Total    int
	PageNo   int
	PageSize int
}

// ReviewsResponse is the body of GET /api/alibaba/product/{id}/reviews.
type ReviewsResponse struct {
	Data   []catalog.Review `json:"data"`
	Rating float64          `json:"rating"`
	Total  int              `json:"total"`
}

// ShippingRequest is the body of POST /api/alibaba/shipping-estimate.
type ShippingRequest struct {
	ProductID   string `json:"productId" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	Destination string `json:"destination" validate:"required"`
}

// ShippingDetails itemizes the estimate.
type ShippingDetails struct {
	BaseCost       decimal.Decimal `json:"baseCost"`
	PerKgCost      decimal.Decimal `json:"perKgCost"`
	TotalWeight    string          `json:"totalWeight"`
	ShippingMethod string          `json:"shippingMethod"`
}

// ShippingEstimate is the computed cost and ETA for an order.
type ShippingEstimate struct {
	ProductID         string          `json:"productId"`
	Quantity          int             `json:"quantity"`
	Destination       string          `json:"destination"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	Currency          string          `json:"currency"`
	EstimatedDelivery int             `json:"estimatedDelivery"`
	Details           ShippingDetails `json:"details"`
}
