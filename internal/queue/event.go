// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCreatedEvent is published after an order creation transaction
// commits.  Amounts travel as decimal strings so consumers never touch
// binary floating point.
type OrderCreatedEvent struct {
	EventID        string `json:"event_id"`
	OrderID        uint32 `json:"order_id"`
	CustomerID     uint32 `json:"customer_id"`
	ItemCount      int    `json:"item_count"`
	Original       string `json:"original_amount"`
	DiscountAmount string `json:"discount_amount"`
	Total          string `json:"total_amount"`
	CreatedAt      string `json:"created_at"`
}

// ShortageLine names one residual inside a shortage event.
type ShortageLine struct {
	BookID     uint32 `json:"book_id"`
	SupplierID uint32 `json:"supplier_id"`
	Quantity   uint32 `json:"quantity"`
}

// ShortageRegisteredEvent is published when a partial shipment registers a
// shortage.  Downstream purchasing tooling can react without polling the
// primary database.
type ShortageRegisteredEvent struct {
	EventID      string         `json:"event_id"`
	ShortageID   uint32         `json:"shortage_id"`
	OrderID      uint32         `json:"order_id"`
	Lines        []ShortageLine `json:"lines"`
	RegisteredAt string         `json:"registered_at"`
}
