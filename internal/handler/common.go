// Package handler contains the HTTP layer: request DTOs, the error-to-wire
// mapping and one handler struct per endpoint group.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/bookhaven/bookstore/internal/auth"
	"github.com/bookhaven/bookstore/internal/credit"
	"github.com/bookhaven/bookstore/internal/repository"
	"github.com/bookhaven/bookstore/internal/utils"
)

// The wire contract admits exactly three statuses: 200 for success, 400 for
// any domain or authentication failure, 502 for infrastructure failures.
// Error bodies are {"error": "<Kind>: <context>"} with the stable kind
// strings of the sentinels below; nothing of the underlying driver error
// ever leaves the process.

var domainErrors = []error{
	utils.ErrInvalidToken,
	utils.ErrExpired,
	auth.ErrUnknownSubject,
	auth.ErrNoSession,
	auth.ErrLoggedOut,
	auth.ErrTokenSuperseded,
	auth.ErrIdleTimeout,
	auth.ErrPermissionDenied,
	credit.ErrEmptyOrder,
	repository.ErrBookNotFound,
	repository.ErrOrderNotFound,
	repository.ErrUnknownTier,
	repository.ErrIllegalTransition,
	repository.ErrNoSupplier,
	repository.ErrUsernameExists,
}

// fail translates an error into the wire response.  Known domain sentinels
// (possibly wrapped with context) and explicit BadRequest messages map to
// 400; everything else is an infrastructure failure reported as a bare
// DBError with 502.
func fail(c echo.Context, err error) error {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}
	if strings.HasPrefix(err.Error(), "BadRequest") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusBadGateway, echo.Map{"error": "DBError"})
}

// badRequest reports a validation failure with the stable BadRequest kind.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "BadRequest: " + msg})
}

func decimalFromUint(n uint32) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
