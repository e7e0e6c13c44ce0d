package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bookhaven/bookstore/internal/model"
)

// AdminRepo provides access to the 'admins' table.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// Create inserts an admin and returns its ID.  The caller is responsible for
// sealing the password with the admin password key and for checking that the
// requesting admin holds the Admin role.
func (r *AdminRepo) Create(ctx context.Context, username, passwordCipher string, role model.Role) (uint32, error) {
	username = strings.TrimSpace(username)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admins (username, password, role, status) VALUES (?,?,?,?)",
		username, passwordCipher, uint8(role), model.StatusActive)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}

// GetByUsername fetches an admin by unique username.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (model.Admin, error) {
	var a model.Admin
	var role uint8
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password,role,status,created_at,updated_at FROM admins WHERE username=? LIMIT 1",
		strings.TrimSpace(username)).
		Scan(&a.ID, &a.Username, &a.PasswordCipher, &role, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	a.Role = model.Role(role)
	return a, err
}
