package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionCompleteNoProps(t *testing.T) {
	p := &Product{ID: "1"}
	assert.True(t, SelectionComplete(p, nil))
	assert.True(t, SelectionComplete(p, Selection{}))
}

func TestSelectionComplete(t *testing.T) {
	p := &Product{
		SKUProps: []SKUProp{
			{Name: "Color", Values: []SKUValue{{ID: "c1"}}},
			{Name: "Size", Values: []SKUValue{{ID: "s1"}}},
		},
	}
	assert.False(t, SelectionComplete(p, Selection{}))
	assert.False(t, SelectionComplete(p, Selection{"Color": "c1"}))
	assert.True(t, SelectionComplete(p, Selection{"Color": "c1", "Size": "s1"}))
}

func TestMatchSKU(t *testing.T) {
	skus := []SKU{
		{PropIDs: []string{"c1", "s1"}, Price: decimal.NewFromInt(9), Stock: 10},
		{PropIDs: []string{"c1", "s2"}, Price: decimal.NewFromInt(10), Stock: 4},
		{PropIDs: []string{"c2", "s1"}, Price: decimal.NewFromInt(11), Stock: 0},
	}

	sku, ok := MatchSKU(skus, Selection{"Color": "c1", "Size": "s2"})
	require.True(t, ok)
	assert.True(t, sku.Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 4, sku.Stock)

	_, ok = MatchSKU(skus, Selection{"Color": "c2", "Size": "s2"})
	assert.False(t, ok, "unavailable combination must not match")
}

func TestMatchSKUPartialSelectionPicksFirstSuperset(t *testing.T) {
	skus := []SKU{
		{PropIDs: []string{"c1", "s1"}, Price: decimal.NewFromInt(9)},
		{PropIDs: []string{"c1", "s2"}, Price: decimal.NewFromInt(10)},
	}
	// A single selected id is a subset of both; upstream order decides.
	sku, ok := MatchSKU(skus, Selection{"Color": "c1"})
	require.True(t, ok)
	assert.True(t, sku.Price.Equal(decimal.NewFromInt(9)))
}

func TestMatchSKUNoSKUs(t *testing.T) {
	_, ok := MatchSKU(nil, Selection{"Color": "c1"})
	assert.False(t, ok)
	_, ok = MatchSKU([]SKU{{PropIDs: []string{"c1"}}}, nil)
	assert.False(t, ok)
}

func TestSKUImageIndex(t *testing.T) {
	p := &Product{Images: []string{"/a.jpg", "/b.jpg", "/c.jpg"}}
	assert.Equal(t, 1, SKUImageIndex(p, SKU{Image: "/b.jpg"}))
	assert.Equal(t, -1, SKUImageIndex(p, SKU{Image: "/zz.jpg"}))
	assert.Equal(t, -1, SKUImageIndex(p, SKU{}))
}
