// Package shop holds the guest cart and favorites state: a redis-backed
// store mutated through defined operations, mirrored into Postgres keyed by
// the guest session.
package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

// Storage keys match the fixed local-storage keys the web client uses, so a
// mirrored session round-trips without translation.
const (
	cartKeyPrefix      = "shop_cart:"
	favoritesKeyPrefix = "shop_favs:"
	dirtySessionsKey   = "shop_dirty_sessions"
)

// CartLine is one product in the cart with its ordered quantity.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

// Snapshot is the mirrored state of one guest session.
type Snapshot struct {
	SessionKey string     `json:"sessionKey"`
	Cart       []CartLine `json:"cart"`
	Favorites  []string   `json:"favorites"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
