package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/copperline/gatehouse/internal/auth/domain"
)

type rolesRepo struct {
	db *sql.DB
}

const roleColumns = `id, title, description, enabled, removed, created_at, updated_at`

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = ?`, id)
	return r.scanRole(ctx, row)
}

func (r *rolesRepo) GetRoleByTitle(ctx context.Context, title string) (domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE title = ?`, title)
	return r.scanRole(ctx, row)
}

func (r *rolesRepo) ListRoles(ctx context.Context, enabled *bool) ([]domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY id ASC`
	args := []any{}
	if enabled != nil {
		query = `SELECT ` + roleColumns + ` FROM roles WHERE enabled = ? ORDER BY id ASC`
		args = append(args, *enabled)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		role, err := r.scanRoleRow(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		if roles[i].Members, err = r.listMembers(ctx, roles[i].ID); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, title, description, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		role.ID, role.Title, role.Description, role.Enabled, now, now)
	return err
}

func (r *rolesRepo) UpdateRole(ctx context.Context, role domain.Role) error {
	var removed sql.NullTime
	if at, ok := role.State.DeletedTime(); ok {
		removed = sql.NullTime{Time: at.UTC(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE roles SET title = ?, description = ?, enabled = ?, removed = ?, updated_at = ? WHERE id = ?`,
		role.Title, role.Description, role.Enabled, removed, time.Now().UTC(), role.ID)
	return err
}

func (r *rolesRepo) SoftDeleteRole(ctx context.Context, roleID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE roles SET removed = ?, enabled = 0, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), roleID)
	return err
}

func (r *rolesRepo) DeleteRole(ctx context.Context, roleID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, roleID)
	return err
}

func (r *rolesRepo) DeleteRoleMembers(ctx context.Context, roleID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE role_id = ?`, roleID)
	return err
}

func (r *rolesRepo) AddRoleMember(ctx context.Context, roleID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID, roleID)
	return err
}

func (r *rolesRepo) scanRole(ctx context.Context, row *sql.Row) (domain.Role, error) {
	var (
		role    domain.Role
		removed sql.NullTime
	)

	err := row.Scan(&role.ID, &role.Title, &role.Description, &role.Enabled,
		&removed, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	role.State = mapLifecycle(removed)

	if role.Members, err = r.listMembers(ctx, role.ID); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (r *rolesRepo) scanRoleRow(rows *sql.Rows) (domain.Role, error) {
	var (
		role    domain.Role
		removed sql.NullTime
	)

	err := rows.Scan(&role.ID, &role.Title, &role.Description, &role.Enabled,
		&removed, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return domain.Role{}, err
	}
	role.State = mapLifecycle(removed)
	return role, nil
}

func (r *rolesRepo) listMembers(ctx context.Context, roleID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM user_roles WHERE role_id = ? ORDER BY user_id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
