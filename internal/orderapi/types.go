package orderapi

import (
	"time"

	"github.com/Tijo-11/Vector-Ecom-sub001/pkg/db/pagination"
)

// PaymentStatus is the order service's authoritative payment state.
type PaymentStatus string

const (
	PaymentStatusUnpaid     PaymentStatus = "unpaid"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusPaid       PaymentStatus = "paid"
)

// Settled reports whether the order service considers the payment applied.
// "processing" counts: the charge has been accepted and only asynchronous
// capture bookkeeping remains.
func (s PaymentStatus) Settled() bool {
	return s == PaymentStatusProcessing || s == PaymentStatusPaid
}

const OrderStatusCancelled = "cancelled"

// OrderLineItem is a purchased line within an order snapshot.
type OrderLineItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Discount    int64  `json:"discount"`
}

// Subtotal is display-derived and never sent back to the server.
func (i OrderLineItem) Subtotal() int64 {
	return int64(i.Quantity)*i.UnitPrice - i.Discount
}

// Address is the delivery address attached to an order.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderSnapshot is the order service's view of an order at a point in time.
// The client holds it as an immutable copy.
type OrderSnapshot struct {
	OrderID         string          `json:"order_id"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	OrderStatus     string          `json:"order_status"`
	Items           []OrderLineItem `json:"items"`
	ShippingTotal   int64           `json:"shipping_total"`
	TaxTotal        int64           `json:"tax_total"`
	DiscountTotal   int64           `json:"discount_total"`
	GrandTotal      int64           `json:"grand_total"`
	Currency        string          `json:"currency"`
	DeliveryAddress Address         `json:"delivery_address"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SettleRequest submits provider proof-of-payment to the settlement endpoint.
// At most one of SessionID / CaptureID is present.
type SettleRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Provider       string `json:"provider"`
	SessionID      string `json:"session_id,omitempty"`
	CaptureID      string `json:"capture_id,omitempty"`
}

// Settlement verdicts returned by the order service.
const (
	SettleVerdictPaymentSuccessful = "payment_successful"
	SettleVerdictAlreadyPaid       = "already_paid"
	SettleVerdictUnpaid            = "unpaid"
	SettleVerdictCancelled         = "cancelled"
)

type settleResponse struct {
	Verdict string `json:"verdict"`
}

// CartRef identifies a cart to the order service: exactly one of UserID
// (authenticated) or CartID (guest) is set.
type CartRef struct {
	UserID string
	CartID string
}

// CartItem is one line of a server-held cart.
type CartItem struct {
	ItemID    string `json:"item_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// ListCartItemsResponse is one page of cart items.
type ListCartItemsResponse struct {
	Items    []CartItem          `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}
