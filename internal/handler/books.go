package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/bookstore/internal/model"
	"github.com/bookhaven/bookstore/internal/repository"
)

// BookHandler serves the public, unauthenticated catalogue.  These are the
// only GET endpoints and the ones the Redis response cache fronts.
type BookHandler struct {
	Books *repository.BookRepo
}

func NewBookHandler(books *repository.BookRepo) *BookHandler { return &BookHandler{Books: books} }

type bookPart struct {
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn"`
	UnitPrice string `json:"unit_price"`
}

func toBookPart(b model.Book) bookPart {
	return bookPart{ID: b.ID, Title: b.Title, Author: b.Author, ISBN: b.ISBN, UnitPrice: b.UnitPrice.StringFixed(2)}
}

// List handles GET /books.
func (h *BookHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	books, err := h.Books.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	out := make([]bookPart, 0, len(books))
	for _, b := range books {
		out = append(out, toBookPart(b))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /books/:id.
func (h *BookHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return badRequest(c, "invalid book id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Books.GetByID(ctx, uint32(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toBookPart(b))
}
