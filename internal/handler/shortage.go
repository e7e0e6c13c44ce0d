package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/bookstore/internal/auth"
	"github.com/bookhaven/bookstore/internal/model"
	"github.com/bookhaven/bookstore/internal/repository"
	"github.com/bookhaven/bookstore/internal/utils"
)

// ShortageHandler exposes the shortage registry to staff: listing what must
// be sourced from suppliers and marking entries resolved once stock
// arrives.
type ShortageHandler struct {
	Shortages *repository.ShortageRepo
	Verifier  *auth.Verifier
}

func NewShortageHandler(shortages *repository.ShortageRepo, verifier *auth.Verifier) *ShortageHandler {
	return &ShortageHandler{Shortages: shortages, Verifier: verifier}
}

type shortageListReq struct {
	utils.TokenTriple
	OnlyOpen bool `json:"only_open"`
}
type shortageResolveReq struct {
	utils.TokenTriple
	ShortageID uint32 `json:"shortage_id"`
}

type shortageLinePart struct {
	BookID     uint32 `json:"book_id"`
	SupplierID uint32 `json:"supplier_id"`
	Quantity   uint32 `json:"quantity"`
}
type shortagePart struct {
	ID         uint32             `json:"id"`
	Registered string             `json:"registered_at"`
	Resolved   bool               `json:"resolved"`
	Items      []shortageLinePart `json:"items"`
}

// List handles POST /admin/shortage/list.
func (h *ShortageHandler) List(c echo.Context) error {
	var req shortageListReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, _, err := h.Verifier.VerifyAdmin(ctx, req.TokenTriple, model.RoleStaff); err != nil {
		return fail(c, err)
	}
	shortages, err := h.Shortages.List(ctx, req.OnlyOpen)
	if err != nil {
		return fail(c, err)
	}
	out := make([]shortagePart, 0, len(shortages))
	for _, s := range shortages {
		p := shortagePart{
			ID:         s.ID,
			Registered: s.Registered.UTC().Format(time.RFC3339),
			Resolved:   s.Resolved,
		}
		for _, it := range s.Items {
			p.Items = append(p.Items, shortageLinePart{BookID: it.BookID, SupplierID: it.SupplierID, Quantity: it.Quantity})
		}
		out = append(out, p)
	}
	return c.JSON(http.StatusOK, out)
}

// Resolve handles POST /admin/shortage/resolve.
func (h *ShortageHandler) Resolve(c echo.Context) error {
	var req shortageResolveReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, _, err := h.Verifier.VerifyAdmin(ctx, req.TokenTriple, model.RoleStaff); err != nil {
		return fail(c, err)
	}
	if err := h.Shortages.Resolve(ctx, req.ShortageID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "resolved", "shortage_id": req.ShortageID})
}
