package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment status values for orders.
const (
	PaymentUnpaid    = "UNPAID"
	PaymentPaid      = "PAID"
	PaymentCancelled = "CANCELLED"
)

// Shipping status values for orders.  Transitions:
// PENDING -> SHIPPED | PARTIAL_DELIVERED -> DELIVERED -> COMPLETED.
const (
	ShippingPending   = "PENDING"
	ShippingShipped   = "SHIPPED"
	ShippingPartial   = "PARTIAL_DELIVERED"
	ShippingDelivered = "DELIVERED"
	ShippingCompleted = "COMPLETED"
)

// Order represents a row of the `orders` table.  Amount invariants:
// Original = sum of item totals, DiscountAmount = round2(Original *
// DiscountPct / 100), Total = Original - DiscountAmount.  The shipping
// address is snapshotted from the customer at creation.
type Order struct {
	ID              uint32          // orders.id
	CustomerID      uint32          // orders.customer_id
	Date            time.Time       // orders.order_date
	Original        decimal.Decimal // orders.original_amount
	DiscountPct     decimal.Decimal // orders.discount_pct
	DiscountAmount  decimal.Decimal // orders.discount_amount
	Total           decimal.Decimal // orders.total_amount
	ShippingAddress string          // orders.shipping_address
	PaymentStatus   string          // orders.payment_status
	ShippingStatus  string          // orders.shipping_status
	Items           []OrderItem     // orders -> order_items (loaded on demand)
}

// OrderItem is a row of the `order_items` table.  TotalPrice is the book's
// unit price at creation multiplied by the quantity.
type OrderItem struct {
	ID         uint32          // order_items.id
	OrderID    uint32          // order_items.order_id
	BookID     uint32          // order_items.book_id
	Quantity   uint32          // order_items.quantity (> 0)
	TotalPrice decimal.Decimal // order_items.total_price
}

// OrderEvent is a row of the `order_events` table: a minimal record of a
// state change or a related fact, such as the shortage registered during a
// partial shipment.
type OrderEvent struct {
	ID        uint32    // order_events.id
	OrderID   uint32    // order_events.order_id
	Kind      string    // order_events.kind
	Note      string    // order_events.note
	CreatedAt time.Time // order_events.created_at
}
