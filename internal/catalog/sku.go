package catalog

// Selection maps an option group name to the selected value id. A partial
// selection is valid; it just cannot match a SKU yet.
type Selection map[string]string

// SelectionComplete reports whether every option group has exactly one
// selected value. A product with no option groups needs no selection.
func SelectionComplete(p *Product, sel Selection) bool {
	if p == nil || len(p.SKUProps) == 0 {
		return true
	}
	for _, prop := range p.SKUProps {
		if sel[prop.Name] == "" {
			return false
		}
	}
	return true
}

// MatchSKU returns the first SKU whose value-identifier set contains every
// selected id. List order is preserved from upstream, so duplicate matches
// resolve to the earliest structural match. No match is a valid outcome
// meaning the selection is incomplete or the combination is unavailable.
//
// Note: value ids are matched as a flat set. If upstream ever reuses an id
// across option groups this can match an unintended SKU; upstream data has
// not been observed to collide.
func MatchSKU(skus []SKU, sel Selection) (SKU, bool) {
	if len(skus) == 0 || len(sel) == 0 {
		return SKU{}, false
	}
	for _, sku := range skus {
		ids := make(map[string]struct{}, len(sku.PropIDs))
		for _, id := range sku.PropIDs {
			ids[id] = struct{}{}
		}
		matched := true
		for _, selected := range sel {
			if selected == "" {
				continue
			}
			if _, ok := ids[selected]; !ok {
				matched = false
				break
			}
		}
		if matched {
			return sku, true
		}
	}
	return SKU{}, false
}

// SKUImageIndex locates the matched SKU's image in the product image list so
// the consumer can switch the active image. Returns -1 when the SKU has no
// image or the image is not part of the product gallery.
func SKUImageIndex(p *Product, sku SKU) int {
	if p == nil || sku.Image == "" {
		return -1
	}
	for i, img := range p.Images {
		if img == sku.Image {
			return i
		}
	}
	return -1
}
