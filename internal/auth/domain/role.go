package domain

import "time"

// Well-known protected role identifiers. These roles are seeded by migration
// and can never be disabled or deleted.
const (
	RoleSuperadmin   = "superadmin"
	RoleAdmin        = "admin"
	RoleStandardUser = "standard-user"
)

type Role struct {
	ID          string
	Title       string // unique
	Description string
	Enabled     bool
	State       Lifecycle
	Members     []string // member user ids
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Protected reports whether id is one of the system-protected role ids.
func Protected(id string) bool {
	switch id {
	case RoleSuperadmin, RoleAdmin, RoleStandardUser:
		return true
	}
	return false
}
