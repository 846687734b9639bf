package repository

import (
	"context"
	"database/sql"
)

// RoleRepo answers role lookups against user_roles.  User ids are the
// subject of the auth backend's tokens and are stored as strings.
type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

func (r *RoleRepo) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_roles WHERE user_id = ? AND role = ?)`, userID, role).Scan(&ok)
	return ok, err
}
