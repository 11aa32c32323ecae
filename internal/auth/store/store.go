package store

import (
	"context"
	"errors"
	"time"

	"github.com/copperline/gatehouse/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
//
// Multi-step flows (role membership replacement in particular) deliberately
// run as independent statements: per-user consistency relies on per-statement
// atomicity and last-write-wins, not application-level transactions.
type Store interface {
	Users() Users
	Roles() Roles

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id with roles and accounts loaded.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername matches active and soft-deleted users alike; signup
	// needs both to decide between reactivation and conflict.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used during login and password-reset issuance.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByResetToken resolves an outstanding password-reset token.
	GetUserByResetToken(ctx context.Context, token string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// Reactivate clears the soft-delete marker and re-enables the user.
	Reactivate(ctx context.Context, userID string) error

	// SoftDeleteUser sets the delete marker and clears the enabled flag.
	SoftDeleteUser(ctx context.Context, userID string, at time.Time) error

	// DeleteUser hard-deletes; only used under test configuration.
	DeleteUser(ctx context.Context, userID string) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateTOTPSecret persists a freshly provisioned two-factor secret.
	UpdateTOTPSecret(ctx context.Context, userID string, secret string) error

	// SetResetToken attaches a password-reset token with its expiry.
	SetResetToken(ctx context.Context, userID, token string, expires time.Time) error

	// ClearResetToken consumes the outstanding reset token, if any.
	ClearResetToken(ctx context.Context, userID string) error

	// AddUserRole links a user to a role.
	AddUserRole(ctx context.Context, userID, roleID string) error
}

type Roles interface {
	// GetRoleByID fetches a role with its member list.
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// GetRoleByTitle fetches a role by its unique title.
	GetRoleByTitle(ctx context.Context, title string) (domain.Role, error)

	// ListRoles returns all roles ordered by id ascending, members included.
	// enabled filters by the enabled flag when non-nil.
	ListRoles(ctx context.Context, enabled *bool) ([]domain.Role, error)

	// CreateRole inserts a new role.
	CreateRole(ctx context.Context, r domain.Role) error

	// UpdateRole updates title, description, enabled and the delete marker.
	UpdateRole(ctx context.Context, r domain.Role) error

	// SoftDeleteRole sets the delete marker and clears the enabled flag.
	SoftDeleteRole(ctx context.Context, roleID string, at time.Time) error

	// DeleteRole hard-deletes; only used under test configuration.
	DeleteRole(ctx context.Context, roleID string) error

	// DeleteRoleMembers removes every membership link of a role.
	DeleteRoleMembers(ctx context.Context, roleID string) error

	// AddRoleMember links a user to a role.
	AddRoleMember(ctx context.Context, roleID, userID string) error
}
