package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/bookstore/internal/auth"
	"github.com/bookhaven/bookstore/internal/model"
	"github.com/bookhaven/bookstore/internal/repository"
	"github.com/bookhaven/bookstore/internal/utils"
)

// AuthHandler bundles dependencies for the customer auth endpoints.  The
// login flow compares the deterministic password ciphertext, issues a sealed
// token and installs it as the customer's single online session; every
// other privileged endpoint then goes through the verifier.
type AuthHandler struct {
	Customers *repository.CustomerRepo
	Sessions  *repository.SessionRepo
	Credits   *repository.CreditRepo
	Codec     *utils.TokenCodec
	Passwords *utils.PasswordCipher
	Verifier  *auth.Verifier
}

func NewAuthHandler(customers *repository.CustomerRepo, sessions *repository.SessionRepo, credits *repository.CreditRepo, codec *utils.TokenCodec, passwords *utils.PasswordCipher, verifier *auth.Verifier) *AuthHandler {
	return &AuthHandler{Customers: customers, Sessions: sessions, Credits: credits, Codec: codec, Passwords: passwords, Verifier: verifier}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type tokenReq struct {
	utils.TokenTriple
}

type profileResp struct {
	ID             uint32 `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	Balance        string `json:"account_balance"`
	CreditLevel    uint32 `json:"credit_level"`
	TotalPurchase  string `json:"total_purchase"`
	OverdraftLimit string `json:"overdraft_limit"`
}

func toProfile(c model.Customer) profileResp {
	return profileResp{
		ID:             c.ID,
		Username:       c.Username,
		Name:           c.Name,
		Address:        c.Address,
		Email:          c.Email,
		Status:         c.Status,
		Balance:        c.Balance.StringFixed(2),
		CreditLevel:    c.CreditLevel,
		TotalPurchase:  c.TotalPurchase.StringFixed(2),
		OverdraftLimit: c.OverdraftLimit.StringFixed(2),
	}
}

// Register creates a customer account at the lowest credit tier.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "username and password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Credits.Lowest(ctx)
	if err != nil {
		return fail(c, err)
	}
	id, err := h.Customers.Create(ctx, req.Username, h.Passwords.Seal(req.Password),
		req.Name, req.Address, req.Email, entry.Level, entry.OverdraftLimit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "username": req.Username})
}

// Login verifies credentials and returns a fresh token triple.  The session
// upsert makes this login the only valid one: an earlier token for the same
// customer is superseded from this point on.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "username and password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return badRequest(c, "invalid credentials")
		}
		return fail(c, err)
	}
	if !h.Passwords.Matches(cust.PasswordCipher, req.Password) {
		return badRequest(c, "invalid credentials")
	}
	if cust.Status != model.StatusActive {
		return badRequest(c, "account is not active")
	}

	triple, err := h.Codec.Issue(cust.Username)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Sessions.Open(ctx, cust.ID, triple.Token); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, triple)
}

// Logout verifies the supplied token and marks the session offline.  The
// full verifier ladder runs first, so a superseded token cannot take down
// the session that replaced it.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, _, err := h.Verifier.VerifyUser(ctx, req.TokenTriple)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Sessions.Invalidate(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Detail returns the authenticated customer's profile.
func (h *AuthHandler) Detail(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, _, err := h.Verifier.VerifyUser(ctx, req.TokenTriple)
	if err != nil {
		return fail(c, err)
	}
	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toProfile(cust))
}
