package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/bookstore/internal/auth"
	"github.com/bookhaven/bookstore/internal/model"
	"github.com/bookhaven/bookstore/internal/queue"
	"github.com/bookhaven/bookstore/internal/repository"
	queue_publisher "github.com/bookhaven/bookstore/internal/service"
	"github.com/bookhaven/bookstore/internal/shipping"
)

// ShipmentHandler runs the staff-side shipping state machine.  Auto-ship
// allocates stock greedily across locations inside a single transaction;
// lines that cannot be covered become shortage records against the first
// supplier with enough advertised availability, and the absence of such a
// supplier aborts the whole shipment with nothing decremented.
type ShipmentHandler struct {
	Orders    *repository.OrderRepo
	Books     *repository.BookRepo
	Suppliers *repository.SupplierRepo
	Shortages *repository.ShortageRepo
	Verifier  *auth.Verifier
}

func NewShipmentHandler(orders *repository.OrderRepo, books *repository.BookRepo, suppliers *repository.SupplierRepo, shortages *repository.ShortageRepo, verifier *auth.Verifier) *ShipmentHandler {
	if orders == nil || books == nil || suppliers == nil || shortages == nil || verifier == nil {
		panic("nil dependency passed to NewShipmentHandler")
	}
	return &ShipmentHandler{Orders: orders, Books: books, Suppliers: suppliers, Shortages: shortages, Verifier: verifier}
}

// ShipAuto handles POST /admin/order/ship/auto.  Requires the Staff role.
// The order must be paid and pending; on success shipping becomes SHIPPED,
// or PARTIAL_DELIVERED when a shortage was registered, with the shortage id
// recorded in the order's events.
func (h *ShipmentHandler) ShipAuto(c echo.Context) error {
	var req orderIDReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if _, _, err := h.Verifier.VerifyAdmin(ctx, req.TokenTriple, model.RoleStaff); err != nil {
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
	if o.PaymentStatus != model.PaymentPaid || o.ShippingStatus != model.ShippingPending {
		return fail(c, fmt.Errorf("%w: payment=%s shipping=%s",
			repository.ErrIllegalTransition, o.PaymentStatus, o.ShippingStatus))
	}

	items, err := h.Orders.ItemsTx(ctx, tx, o.ID)
	if err != nil {
		return fail(c, err)
	}

	var shortageLines []model.ShortageItem
	for _, it := range items {
		cells, err := h.Books.CellsTx(ctx, tx, it.BookID)
		if err != nil {
			return fail(c, err)
		}
		takes, residual := shipping.Plan(cells, it.Quantity)
		for _, t := range takes {
			if err := h.Books.DecrementCellTx(ctx, tx, it.BookID, t.LocationID, t.Take); err != nil {
				return fail(c, err)
			}
		}
		if residual == 0 {
			continue
		}
		offers, err := h.Suppliers.OffersForBookTx(ctx, tx, it.BookID)
		if err != nil {
			return fail(c, err)
		}
		offer, ok := shipping.PickSupplier(offers, residual)
		if !ok {
			// Rollback undoes every decrement made above.
			return fail(c, fmt.Errorf("%w: book %d residual %d", repository.ErrNoSupplier, it.BookID, residual))
		}
		shortageLines = append(shortageLines, model.ShortageItem{
			BookID:     it.BookID,
			SupplierID: offer.SupplierID,
			Quantity:   residual,
		})
	}

	status := model.ShippingShipped
	var shortage model.Shortage
	if len(shortageLines) > 0 {
		status = model.ShippingPartial
		shortage = model.Shortage{Registered: time.Now().UTC(), Items: shortageLines}
		if err := h.Shortages.CreateTx(ctx, tx, &shortage); err != nil {
			return fail(c, err)
		}
		if err := h.Orders.AddEventTx(ctx, tx, o.ID, "SHORTAGE", fmt.Sprintf("shortage %d", shortage.ID)); err != nil {
			return fail(c, err)
		}
	}
	if err := h.Orders.SetShippingTx(ctx, tx, o.ID, status); err != nil {
		return fail(c, err)
	}
	if err := h.Orders.AddEventTx(ctx, tx, o.ID, status, ""); err != nil {
		return fail(c, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true

	if len(shortageLines) > 0 {
		ev := queue.ShortageRegisteredEvent{
			ShortageID:   shortage.ID,
			OrderID:      o.ID,
			RegisteredAt: shortage.Registered.Format(time.RFC3339),
		}
		for _, l := range shortageLines {
			ev.Lines = append(ev.Lines, queue.ShortageLine{BookID: l.BookID, SupplierID: l.SupplierID, Quantity: l.Quantity})
		}
		_ = queue_publisher.PublishShortageRegistered(ctx, ev)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "shipped", "shipping_status": status})
}

// Delivered handles POST /admin/order/delivered: the carrier confirmed
// delivery of a shipped (possibly partial) order.
func (h *ShipmentHandler) Delivered(c echo.Context) error {
	var req orderIDReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, _, err := h.Verifier.VerifyAdmin(ctx, req.TokenTriple, model.RoleStaff); err != nil {
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
	if o.ShippingStatus != model.ShippingShipped && o.ShippingStatus != model.ShippingPartial {
		return fail(c, fmt.Errorf("%w: shipping is %s", repository.ErrIllegalTransition, o.ShippingStatus))
	}
	if err := h.Orders.SetShippingTx(ctx, tx, o.ID, model.ShippingDelivered); err != nil {
		return fail(c, err)
	}
	if err := h.Orders.AddEventTx(ctx, tx, o.ID, model.ShippingDelivered, ""); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"message": "delivered", "order_id": o.ID})
}
