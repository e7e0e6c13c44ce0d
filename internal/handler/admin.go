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

// AdminHandler serves staff authentication and admin account management.
// Admin logins issue the same sealed triple customers get but no session
// record is written: staff tokens are admitted on validity alone, without
// the idle-timeout discipline customers are held to.
type AdminHandler struct {
	Admins    *repository.AdminRepo
	Codec     *utils.TokenCodec
	Passwords *utils.PasswordCipher // sealed with the admin key, not the customer key
	Verifier  *auth.Verifier
}

func NewAdminHandler(admins *repository.AdminRepo, codec *utils.TokenCodec, passwords *utils.PasswordCipher, verifier *auth.Verifier) *AdminHandler {
	return &AdminHandler{Admins: admins, Codec: codec, Passwords: passwords, Verifier: verifier}
}

type adminRegisterReq struct {
	utils.TokenTriple
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // STAFF | ADMIN
}

// Login verifies staff credentials and returns a token triple.
func (h *AdminHandler) Login(c echo.Context) error {
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

	adm, err := h.Admins.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return badRequest(c, "invalid credentials")
		}
		return fail(c, err)
	}
	if !h.Passwords.Matches(adm.PasswordCipher, req.Password) {
		return badRequest(c, "invalid credentials")
	}
	if adm.Status != model.StatusActive {
		return badRequest(c, "account is not active")
	}

	triple, err := h.Codec.Issue(adm.Username)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, triple)
}

// Register creates a staff account.  Only admins holding the Admin role may
// call it; a Staff token fails the gate with PermissionDenied.
func (h *AdminHandler) Register(c echo.Context) error {
	var req adminRegisterReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, _, err := h.Verifier.VerifyAdmin(ctx, req.TokenTriple, model.RoleAdmin); err != nil {
		return fail(c, err)
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "username and password required")
	}
	var role model.Role
	switch strings.ToUpper(strings.TrimSpace(req.Role)) {
	case "ADMIN":
		role = model.RoleAdmin
	case "STAFF", "":
		role = model.RoleStaff
	default:
		return badRequest(c, "unknown role")
	}

	id, err := h.Admins.Create(ctx, req.Username, h.Passwords.Seal(req.Password), role)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "username": req.Username, "role": role.String()})
}
