// Package catalog defines the canonical product model and the pure
// transformations the storefront runs on upstream marketplace records.
package catalog

import "github.com/shopspring/decimal"

// Seller identifies the upstream supplier of a product.
type Seller struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// SKUValue is one selectable value inside an option group.
type SKUValue struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
}

// SKUProp is an option group such as "Color" with its ordered values.
type SKUProp struct {
	Name   string     `json:"name"`
	Values []SKUValue `json:"values"`
}

// SKU is a concrete purchasable variant: one value id per option group.
type SKU struct {
	PropIDs []string        `json:"propIds"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
	Image   string          `json:"image,omitempty"`
}

// PriceTier is a quantity break: the unit price applying at or above MinQty.
type PriceTier struct {
	MinQty int             `json:"minQty"`
	Price  decimal.Decimal `json:"price"`
}

// Logistics carries the flat delivery estimate attached to listings.
type Logistics struct {
	DeliveryDays int             `json:"deliveryDays"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
}

// Review is a buyer review attached to a product.
type Review struct {
	Author  string  `json:"author"`
	Rating  float64 `json:"rating"`
	Content string  `json:"content"`
	Date    string  `json:"date"`
}

// Product is the canonical shape every upstream record normalizes into.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Unit          string          `json:"unit"`
	Images        []string        `json:"images"`
	Category      string          `json:"category,omitempty"`
	Description   string          `json:"description,omitempty"`
	SKUProps      []SKUProp       `json:"skuProps,omitempty"`
	SKUs          []SKU           `json:"skus,omitempty"`
	PriceTiers    []PriceTier     `json:"priceTiers,omitempty"`
	Seller        Seller          `json:"seller"`
	MinOrder      int             `json:"minOrder"`
	Logistics     *Logistics      `json:"logistics,omitempty"`
}
