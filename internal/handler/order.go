package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/bookstore/internal/auth"
	"github.com/bookhaven/bookstore/internal/credit"
	"github.com/bookhaven/bookstore/internal/model"
	"github.com/bookhaven/bookstore/internal/queue"
	"github.com/bookhaven/bookstore/internal/repository"
	queue_publisher "github.com/bookhaven/bookstore/internal/service"
	"github.com/bookhaven/bookstore/internal/utils"
)

// OrderHandler owns the order write paths.  Creation authenticates the
// customer, snapshots address and prices, applies the credit tier and
// persists everything in one transaction; stock is deliberately untouched
// until shipment.  Payment debits the balance within the tier's overdraft
// allowance and then runs the upgrade rule.
type OrderHandler struct {
	Orders    *repository.OrderRepo
	Customers *repository.CustomerRepo
	Books     *repository.BookRepo
	Engine    *credit.Engine
	Verifier  *auth.Verifier
}

func NewOrderHandler(orders *repository.OrderRepo, customers *repository.CustomerRepo, books *repository.BookRepo, engine *credit.Engine, verifier *auth.Verifier) *OrderHandler {
	if orders == nil || customers == nil || books == nil || engine == nil || verifier == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders, Customers: customers, Books: books, Engine: engine, Verifier: verifier}
}

// ----- DTOs -----

type createOrderReq struct {
	utils.TokenTriple
	Items [][2]uint32 `json:"items"` // pairs of [book_id, quantity]
}
type orderIDReq struct {
	utils.TokenTriple
	OrderID uint32 `json:"order_id"`
}

type orderSummary struct {
	ID             uint32 `json:"id"`
	Date           string `json:"date"`
	Original       string `json:"original_amount"`
	DiscountPct    string `json:"discount_pct"`
	DiscountAmount string `json:"discount_amount"`
	Total          string `json:"total_amount"`
	PaymentStatus  string `json:"payment_status"`
	ShippingStatus string `json:"shipping_status"`
}

type orderItemPart struct {
	BookID     uint32 `json:"book_id"`
	Quantity   uint32 `json:"quantity"`
	TotalPrice string `json:"total_price"`
}

type orderDetail struct {
	orderSummary
	ShippingAddress string          `json:"shipping_address"`
	Items           []orderItemPart `json:"items"`
}

func toSummary(o model.Order) orderSummary {
	return orderSummary{
		ID:             o.ID,
		Date:           o.Date.UTC().Format(time.RFC3339),
		Original:       o.Original.StringFixed(2),
		DiscountPct:    o.DiscountPct.StringFixed(1),
		DiscountAmount: o.DiscountAmount.StringFixed(2),
		Total:          o.Total.StringFixed(2),
		PaymentStatus:  o.PaymentStatus,
		ShippingStatus: o.ShippingStatus,
	}
}

// Create handles POST /order/create.  Pipeline: authenticate, validate
// lines, then inside one transaction snapshot the customer's address,
// snapshot each book's price into an order line, apply the credit tier and
// store the amounts.  Any failure rolls the whole order back.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	customerID, _, err := h.Verifier.VerifyUser(ctx, req.TokenTriple)
	if err != nil {
		return fail(c, err)
	}

	if len(req.Items) == 0 {
		return badRequest(c, "items required")
	}
	for _, pair := range req.Items {
		if pair[1] < 1 {
			return badRequest(c, fmt.Sprintf("quantity must be at least 1 for book %d", pair[0]))
		}
	}

	tx, err := h.Orders.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	address, level, err := h.Customers.SnapshotTx(ctx, tx, customerID)
	if err != nil {
		return fail(c, err)
	}

	order := model.Order{
		CustomerID:      customerID,
		Date:            time.Now().UTC(),
		ShippingAddress: address,
	}
	if err := h.Orders.CreateTx(ctx, tx, &order); err != nil {
		return fail(c, err)
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, pair := range req.Items {
		bookID, qty := pair[0], pair[1]
		price, err := h.Books.PriceTx(ctx, tx, bookID)
		if err != nil {
			if errors.Is(err, repository.ErrBookNotFound) {
				return fail(c, fmt.Errorf("%w: %d", repository.ErrBookNotFound, bookID))
			}
			return fail(c, err)
		}
		items = append(items, model.OrderItem{
			OrderID:    order.ID,
			BookID:     bookID,
			Quantity:   qty,
			TotalPrice: price.Mul(decimalFromUint(qty)),
		})
	}
	if err := h.Orders.CreateItemsBulkTx(ctx, tx, items); err != nil {
		return fail(c, err)
	}

	rule, err := h.Engine.TierOf(ctx, level)
	if err != nil {
		return fail(c, err)
	}
	amounts, err := credit.Apply(items, rule)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Orders.SetAmountsTx(ctx, tx, order.ID, amounts.Original, amounts.DiscountPct, amounts.DiscountAmount, amounts.Total); err != nil {
		return fail(c, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true

	// Best effort; the order exists whether or not the event lands.
	_ = queue_publisher.PublishOrderCreated(ctx, queue.OrderCreatedEvent{
		OrderID:        order.ID,
		CustomerID:     customerID,
		ItemCount:      len(items),
		Original:       amounts.Original.StringFixed(2),
		DiscountAmount: amounts.DiscountAmount.StringFixed(2),
		Total:          amounts.Total.StringFixed(2),
		CreatedAt:      order.Date.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"order_id": order.ID})
}

// History handles POST /order/history: the customer's orders, newest first.
func (h *OrderHandler) History(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customerID, _, err := h.Verifier.VerifyUser(ctx, req.TokenTriple)
	if err != nil {
		return fail(c, err)
	}
	orders, err := h.Orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return fail(c, err)
	}
	out := make([]orderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, toSummary(o))
	}
	return c.JSON(http.StatusOK, out)
}

// Detail handles POST /order/detail: one order with its lines,
// owner-checked.
func (h *OrderHandler) Detail(c echo.Context) error {
	var req orderIDReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customerID, _, err := h.Verifier.VerifyUser(ctx, req.TokenTriple)
	if err != nil {
		return fail(c, err)
	}
	o, err := h.Orders.GetByIDForCustomer(ctx, req.OrderID, customerID)
	if err != nil {
		return fail(c, wrapOrderErr(err, req.OrderID))
	}
	det := orderDetail{orderSummary: toSummary(o), ShippingAddress: o.ShippingAddress}
	for _, it := range o.Items {
		det.Items = append(det.Items, orderItemPart{BookID: it.BookID, Quantity: it.Quantity, TotalPrice: it.TotalPrice.StringFixed(2)})
	}
	return c.JSON(http.StatusOK, det)
}

// Pay handles POST /order/pay.  The balance may run negative down to the
// tier's overdraft limit.  After the debit the upgrade rule promotes the
// customer one tier when both thresholds are met, refreshing the overdraft
// limit alongside the level.
func (h *OrderHandler) Pay(c echo.Context) error {
	var req orderIDReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	customerID, _, err := h.Verifier.VerifyUser(ctx, req.TokenTriple)
	if err != nil {
		return fail(c, err)
	}

	tx, err := h.Orders.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := h.Orders.GetForUpdateTx(ctx, tx, req.OrderID)
	if err != nil {
		return fail(c, wrapOrderErr(err, req.OrderID))
	}
	if o.CustomerID != customerID {
		return fail(c, fmt.Errorf("%w: %d", repository.ErrOrderNotFound, req.OrderID))
	}
	if o.PaymentStatus != model.PaymentUnpaid {
		return fail(c, fmt.Errorf("%w: payment is %s", repository.ErrIllegalTransition, o.PaymentStatus))
	}

	balance, totalPurchase, level, err := h.Customers.LockForPaymentTx(ctx, tx, customerID)
	if err != nil {
		return fail(c, err)
	}
	rule, err := h.Engine.TierOf(ctx, level)
	if err != nil {
		return fail(c, err)
	}

	newBalance := balance.Sub(o.Total)
	if newBalance.LessThan(rule.OverdraftLimit.Neg()) {
		return badRequest(c, "balance would exceed overdraft limit")
	}

	if err := h.Customers.DebitTx(ctx, tx, customerID, o.Total); err != nil {
		return fail(c, err)
	}
	if err := h.Orders.SetPaymentTx(ctx, tx, o.ID, model.PaymentPaid); err != nil {
		return fail(c, err)
	}
	if err := h.Orders.AddEventTx(ctx, tx, o.ID, "PAID", "total "+o.Total.StringFixed(2)); err != nil {
		return fail(c, err)
	}

	// Upgrade rule: promote at most one tier per payment.
	newTotalPurchase := totalPurchase.Add(o.Total)
	if credit.UpgradeEligible(newBalance, newTotalPurchase, rule) {
		next, err := h.Engine.NextTier(ctx, level)
		switch {
		case err == nil:
			if err := h.Customers.PromoteTx(ctx, tx, customerID, next.Level, next.OverdraftLimit); err != nil {
				return fail(c, err)
			}
		case errors.Is(err, repository.ErrUnknownTier):
			// already at the top tier
		default:
			return fail(c, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"message": "paid", "order_id": o.ID})
}

// Cancel handles POST /order/cancel.  Only unpaid orders can be cancelled.
func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.transition(c, func(o model.Order) (string, string, error) {
		if o.PaymentStatus != model.PaymentUnpaid {
			return "", "", fmt.Errorf("%w: payment is %s", repository.ErrIllegalTransition, o.PaymentStatus)
		}
		return "payment", model.PaymentCancelled, nil
	})
}

// Confirm handles POST /order/confirm: the customer accepts a delivered
// order, completing it.
func (h *OrderHandler) Confirm(c echo.Context) error {
	return h.transition(c, func(o model.Order) (string, string, error) {
		if o.ShippingStatus != model.ShippingDelivered {
			return "", "", fmt.Errorf("%w: shipping is %s", repository.ErrIllegalTransition, o.ShippingStatus)
		}
		return "shipping", model.ShippingCompleted, nil
	})
}

// transition factors the owner-checked single-status order updates.
func (h *OrderHandler) transition(c echo.Context, decide func(model.Order) (field, status string, err error)) error {
	var req orderIDReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	customerID, _, err := h.Verifier.VerifyUser(ctx, req.TokenTriple)
	if err != nil {
		return fail(c, err)
	}

	tx, err := h.Orders.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := h.Orders.GetForUpdateTx(ctx, tx, req.OrderID)
	if err != nil {
		return fail(c, wrapOrderErr(err, req.OrderID))
	}
	if o.CustomerID != customerID {
		return fail(c, fmt.Errorf("%w: %d", repository.ErrOrderNotFound, req.OrderID))
	}

	field, status, err := decide(o)
	if err != nil {
		return fail(c, err)
	}
	if field == "payment" {
		err = h.Orders.SetPaymentTx(ctx, tx, o.ID, status)
	} else {
		err = h.Orders.SetShippingTx(ctx, tx, o.ID, status)
	}
	if err != nil {
		return fail(c, err)
	}
	if err := h.Orders.AddEventTx(ctx, tx, o.ID, status, ""); err != nil {
		return fail(c, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"message": "ok", "order_id": o.ID})
}

func wrapOrderErr(err error, orderID uint32) error {
	if errors.Is(err, repository.ErrOrderNotFound) {
		return fmt.Errorf("%w: %d", repository.ErrOrderNotFound, orderID)
	}
	return err
}
