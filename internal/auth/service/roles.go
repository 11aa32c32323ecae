package service

import (
	"context"
	"errors"
	"time"

	"github.com/copperline/gatehouse/internal/auth/domain"
	"github.com/copperline/gatehouse/internal/auth/store"
	"github.com/copperline/gatehouse/pkg/idx"
)

// RolesService manages the role catalogue and role membership. The three
// protected system roles can change title and description but never their
// enabled flag, and can never be removed.
type RolesService struct {
	Store store.Store

	// HardDelete switches Remove from soft delete to a real row delete.
	// Only set under test configuration.
	HardDelete bool
}

// List returns every role, soft-deleted ones included, ordered by id.
func (s *RolesService) List(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx, nil)
}

// ListEnabled returns the roles whose enabled flag matches.
func (s *RolesService) ListEnabled(ctx context.Context, enabled bool) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx, &enabled)
}

// GetByID fetches a role by id. Missing roles return (nil, nil); callers
// treat absence as a normal answer, not a failure.
func (s *RolesService) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.Store.Roles().GetRoleByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByTitle fetches a role by its unique title, (nil, nil) when missing.
func (s *RolesService) GetByTitle(ctx context.Context, title string) (*domain.Role, error) {
	role, err := s.Store.Roles().GetRoleByTitle(ctx, title)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Create inserts a new enabled role under a fresh id and returns the stored
// row, re-read by title so timestamps come from the database.
func (s *RolesService) Create(ctx context.Context, title, description string) (*domain.Role, error) {
	role := domain.Role{
		ID:          idx.New().String(),
		Title:       title,
		Description: description,
		Enabled:     true,
		State:       domain.Active(),
	}
	if err := s.Store.Roles().CreateRole(ctx, role); err != nil {
		return nil, err
	}

	created, err := s.Store.Roles().GetRoleByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update writes the role's fields and replaces its member list wholesale.
// Flipping the enabled flag of a protected role fails before any write.
//
// Membership replacement runs as delete-all then re-add, statement by
// statement; a crash in between can leave the member list partially applied.
func (s *RolesService) Update(ctx context.Context, role domain.Role) (*domain.Role, error) {
	existing, err := s.Store.Roles().GetRoleByID(ctx, role.ID)
	if err != nil {
		return nil, err
	}

	if domain.Protected(role.ID) && existing.Enabled != role.Enabled {
		return nil, ErrProtectedRole
	}

	if err := s.Store.Roles().UpdateRole(ctx, role); err != nil {
		return nil, err
	}

	if err := s.Store.Roles().DeleteRoleMembers(ctx, role.ID); err != nil {
		return nil, err
	}
	for _, userID := range role.Members {
		if err := s.Store.Roles().AddRoleMember(ctx, role.ID, userID); err != nil {
			return nil, err
		}
	}

	updated, err := s.Store.Roles().GetRoleByID(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Remove deletes a role and all its memberships. Protected roles refuse.
func (s *RolesService) Remove(ctx context.Context, id string) error {
	if domain.Protected(id) {
		return ErrProtectedRole
	}

	if _, err := s.Store.Roles().GetRoleByID(ctx, id); err != nil {
		return err
	}

	if err := s.Store.Roles().DeleteRoleMembers(ctx, id); err != nil {
		return err
	}

	if s.HardDelete {
		return s.Store.Roles().DeleteRole(ctx, id)
	}
	return s.Store.Roles().SoftDeleteRole(ctx, id, time.Now().UTC())
}
