package model

import "time"

// Role is the admin privilege level.  Roles form a total order: every Admin
// may do anything a Staff may do, so authorisation checks compare with >=.
type Role uint8

const (
	RoleStaff Role = 1 // admins.role = 1
	RoleAdmin Role = 2 // admins.role = 2
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleStaff:
		return "STAFF"
	case RoleAdmin:
		return "ADMIN"
	}
	return "UNKNOWN"
}

// Admin represents a row of the `admins` table.  Admin passwords are sealed
// with a key separate from customer passwords so that the two ciphertext
// spaces never collide.
type Admin struct {
	ID             uint32    // admins.id
	Username       string    // admins.username
	PasswordCipher string    // admins.password
	Role           Role      // admins.role
	Status         string    // admins.status (ACTIVE or CANCELLED)
	CreatedAt      time.Time // admins.created_at
	UpdatedAt      time.Time // admins.updated_at
}
