// Package orders covers the payment webhook, QR generation and the admin
// bulk actions over orders, products and shipments.
package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusShipped   = "shipped"
	StatusCancelled = "cancelled"
)

// paidStatuses are the webhook payment statuses that settle an order.
var paidStatuses = map[string]bool{
	"succeeded": true,
	"paid":      true,
	"completed": true,
}

// Order is a placed storefront order.
type Order struct {
	ID         string          `json:"id"`
	SessionKey string          `json:"sessionKey"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	QRURL      string          `json:"qrUrl,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Payment is a single provider notification recorded against an order.
type Payment struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"orderId"`
	Provider          string          `json:"provider"`
	ProviderPaymentID string          `json:"providerPaymentId"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	ReceivedAt        time.Time       `json:"receivedAt"`
}
