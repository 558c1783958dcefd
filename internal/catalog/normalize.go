package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ImageProxyPath is the same-origin endpoint absolute image URLs are
// rewritten to so the browser never fetches cross-origin.
const ImageProxyPath = "/api/alibaba/image"

// Defaults applied when the upstream record omits a field.
var (
	defaultRating       = 4.5
	defaultUnit         = "piece"
	defaultMinOrder     = 1
	defaultDeliveryDays = 15
	defaultShippingCost = decimal.NewFromInt(5)
	// Original/list price falls back to 1.2x the unit price for discount display.
	originalPriceFactor = decimal.NewFromFloat(1.2)
)

// Raw is an upstream record as decoded from JSON. Field names differ between
// the search and detail endpoints, so every canonical field is resolved
// through an ordered accessor list; the first present, non-null value wins.
type Raw map[string]any

// Normalize maps a raw upstream record onto the canonical Product shape.
// It never fails: absent fields get documented defaults and absent optional
// structures (sku props, tiers, price_info) are simply omitted.
func Normalize(raw Raw) Product {
	price := rawDecimal(raw, "minPrice", "min_price", "price", "price_info.price")

	original, ok := lookupDecimal(raw, "maxPrice", "max_price", "originalPrice", "original_price", "price_info.origin_price")
	if !ok {
		original = price.Mul(originalPriceFactor)
	}

	unit := rawString(raw, "unit", "sale_info.unit")
	if unit == "" {
		unit = defaultUnit
	}

	minOrder := int(rawDecimal(raw, "minOrder", "min_order", "moq", "sale_info.min_order_quantity").IntPart())
	if minOrder <= 0 {
		minOrder = defaultMinOrder
	}

	rating := defaultRating
	if v, ok := lookupDecimal(raw, "rating", "seller.rating", "supplier_rating"); ok {
		rating = v.InexactFloat64()
	}

	p := Product{
		ID:            rawString(raw, "item_id", "itemId", "offerId", "productId", "id"),
		Name:          rawString(raw, "title", "subject", "name"),
		Price:         price,
		OriginalPrice: original,
		Unit:          unit,
		Images:        normalizeImages(raw),
		Category:      rawString(raw, "category", "category_name", "cat_name"),
		Description:   rawString(raw, "description", "desc"),
		SKUProps:      normalizeSKUProps(raw),
		SKUs:          normalizeSKUs(raw),
		PriceTiers:    normalizeTiers(raw),
		Seller: Seller{
			ID:     rawString(raw, "supplierId", "supplier_id", "sellerId", "seller_id"),
			Name:   rawString(raw, "supplierName", "supplier_name", "sellerName", "company_name"),
			Rating: rating,
		},
		MinOrder: minOrder,
		Logistics: &Logistics{
			DeliveryDays: defaultDeliveryDays,
			ShippingCost: defaultShippingCost,
		},
	}
	if p.Description == "" {
		p.Description = p.Name
	}
	return p
}

func normalizeImages(raw Raw) []string {
	var images []string
	if main := rawString(raw, "image", "img", "pic_url", "main_image"); main != "" {
		images = append(images, main)
	}
	for _, key := range []string{"imageList", "image_list", "images", "main_imgs"} {
		list, ok := lookupSlice(raw, key)
		if !ok {
			continue
		}
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				images = append(images, s)
			}
		}
		break
	}

	out := images[:0]
	seen := make(map[string]struct{}, len(images))
	for _, img := range images {
		proxied := ProxyImageURL(img)
		if _, dup := seen[proxied]; dup {
			continue
		}
		seen[proxied] = struct{}{}
		out = append(out, proxied)
	}
	return out
}

func normalizeSKUProps(raw Raw) []SKUProp {
	list, ok := lookupSlice(raw, "sku_props", "skuProps", "props")
	if !ok {
		return nil
	}
	props := make([]SKUProp, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		prop := SKUProp{Name: rawString(m, "name", "prop_name", "propName")}
		values, _ := lookupSlice(m, "values", "value_list")
		for _, v := range values {
			vm, ok := v.(map[string]any)
			if !ok {
				continue
			}
			prop.Values = append(prop.Values, SKUValue{
				ID:    rawString(vm, "id", "vid", "value_id", "valueId"),
				Label: rawString(vm, "label", "name", "value"),
				Image: ProxyImageURL(rawString(vm, "image", "imageUrl", "image_url")),
			})
		}
		if prop.Name != "" || len(prop.Values) > 0 {
			props = append(props, prop)
		}
	}
	return props
}

func normalizeSKUs(raw Raw) []SKU {
	list, ok := lookupSlice(raw, "skus", "sku_list", "skuList")
	if !ok {
		return nil
	}
	// Upstream order is significant: the matcher returns the first
	// structural match, so the list must be kept as received.
	skus := make([]SKU, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		sku := SKU{
			PropIDs: normalizePropIDs(m),
			Price:   rawDecimal(m, "price", "sku_price", "skuPrice"),
			Stock:   int(rawDecimal(m, "stock", "quantity", "amount_on_sale").IntPart()),
			Image:   ProxyImageURL(rawString(m, "image", "imageUrl", "image_url")),
		}
		skus = append(skus, sku)
	}
	return skus
}

func normalizePropIDs(m map[string]any) []string {
	if list, ok := lookupSlice(m, "propIds", "prop_ids", "props_ids"); ok {
		ids := make([]string, 0, len(list))
		for _, v := range list {
			if s := stringify(v); s != "" {
				ids = append(ids, s)
			}
		}
		return ids
	}
	// Detail endpoint encodes the combination as "vid1;vid2".
	joined := rawString(m, "props_ids", "propsIds", "props")
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ";")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func normalizeTiers(raw Raw) []PriceTier {
	list, ok := lookupSlice(raw, "priceTiers", "price_tiers", "price_info.price_ranges", "priceRanges")
	if !ok {
		return nil
	}
	tiers := make([]PriceTier, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			qty := int(rawDecimal(v, "minQty", "min_qty", "beginAmount", "startQuantity", "quantity").IntPart())
			price := rawDecimal(v, "price", "unit_price")
			if qty > 0 {
				tiers = append(tiers, PriceTier{MinQty: qty, Price: price})
			}
		case []any:
			// Some endpoints ship tiers as [qty, price] pairs.
			if len(v) == 2 {
				qty := int(toDecimal(v[0]).IntPart())
				if qty > 0 {
					tiers = append(tiers, PriceTier{MinQty: qty, Price: toDecimal(v[1])})
				}
			}
		}
	}
	return tiers
}

// AbsoluteImageURL upgrades protocol-relative and bare URLs to https.
func AbsoluteImageURL(img string) string {
	switch {
	case img == "":
		return ""
	case strings.HasPrefix(img, "//"):
		return "https:" + img
	case strings.HasPrefix(img, "http://"):
		return "https://" + strings.TrimPrefix(img, "http://")
	case strings.HasPrefix(img, "https://"):
		return img
	case strings.HasPrefix(img, "/"):
		// Already same-origin; nothing to proxy.
		return img
	default:
		return "https://" + img
	}
}

// ProxyImageURL rewrites an absolute image URL into the same-origin proxy
// reference. Same-origin paths pass through untouched.
func ProxyImageURL(img string) string {
	abs := AbsoluteImageURL(img)
	if abs == "" || strings.HasPrefix(abs, "/") {
		return abs
	}
	return fmt.Sprintf("%s?url=%s", ImageProxyPath, url.QueryEscape(abs))
}

// lookup walks an ordered list of keys, returning the first present,
// non-null value. A dot in a key descends into a nested object.
func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		cur := any(m)
		found := true
		for _, part := range strings.Split(key, ".") {
			obj, ok := cur.(map[string]any)
			if !ok {
				found = false
				break
			}
			cur, ok = obj[part]
			if !ok || cur == nil {
				found = false
				break
			}
		}
		if found {
			return cur, true
		}
	}
	return nil, false
}

func lookupSlice(m map[string]any, keys ...string) ([]any, bool) {
	v, ok := lookup(m, keys...)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	return list, ok
}

func lookupDecimal(m map[string]any, keys ...string) (decimal.Decimal, bool) {
	v, ok := lookup(m, keys...)
	if !ok {
		return decimal.Zero, false
	}
	d := toDecimal(v)
	return d, !d.IsZero() || isZeroNumber(v)
}

func rawString(m map[string]any, keys ...string) string {
	v, ok := lookup(m, keys...)
	if !ok {
		return ""
	}
	return stringify(v)
}

func rawDecimal(m map[string]any, keys ...string) decimal.Decimal {
	d, _ := lookupDecimal(m, keys...)
	return d
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		// Upstream ids arrive as JSON numbers; render without an exponent.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func isZeroNumber(v any) bool {
	switch t := v.(type) {
	case float64:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	case json.Number:
		return t.String() == "0"
	case string:
		return strings.TrimSpace(t) == "0"
	}
	return false
}
