package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/bookhaven/bookstore/internal/config"
	"github.com/bookhaven/bookstore/internal/handler"
	"github.com/bookhaven/bookstore/internal/middleware"
)

// Handlers collects every handler the router wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Admin    *handler.AdminHandler
	Order    *handler.OrderHandler
	Shipment *handler.ShipmentHandler
	Shortage *handler.ShortageHandler
	Books    *handler.BookHandler
}

// Register wires all routes.  Privileged endpoints are POST and carry the
// token triple in the body, so no header-based auth middleware is involved;
// the handlers run the verifier themselves.  The login endpoints sit behind
// the rate limiter and the public catalogue behind the response cache; both
// degrade to pass-through when rdb is nil.
func Register(e *echo.Echo, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limited := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Public catalogue.
	e.GET("/books", h.Books.List, cached)
	e.GET("/books/:id", h.Books.Get, cached)

	// Customer account.
	e.POST("/user/register", h.Auth.Register, limited)
	e.POST("/user/login", h.Auth.Login, limited)
	e.POST("/user/logout", h.Auth.Logout)
	e.POST("/user/detail", h.Auth.Detail)

	// Orders.
	e.POST("/order/create", h.Order.Create)
	e.POST("/order/history", h.Order.History)
	e.POST("/order/detail", h.Order.Detail)
	e.POST("/order/pay", h.Order.Pay)
	e.POST("/order/cancel", h.Order.Cancel)
	e.POST("/order/confirm", h.Order.Confirm)

	// Staff.
	e.POST("/admin/login", h.Admin.Login, limited)
	e.POST("/admin/register", h.Admin.Register)
	e.POST("/admin/order/ship/auto", h.Shipment.ShipAuto)
	e.POST("/admin/order/delivered", h.Shipment.Delivered)
	e.POST("/admin/shortage/list", h.Shortage.List)
	e.POST("/admin/shortage/resolve", h.Shortage.Resolve)
}
