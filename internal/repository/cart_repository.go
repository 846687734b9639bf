package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// ServiceCartRepo stores the services cart of anonymous sessions.  A
// session holds at most one line per item; adding it again replaces the
// quantity.
type ServiceCartRepo struct {
	db *sql.DB
}

func NewServiceCartRepo(db *sql.DB) *ServiceCartRepo { return &ServiceCartRepo{db: db} }

func (r *ServiceCartRepo) List(ctx context.Context, sessionID string) ([]model.ServiceCartItem, error) {
	const q = `SELECT id, session_id, item_kind, item_id, quantity, created_at
	           FROM service_cart_items WHERE session_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ServiceCartItem{}
	for rows.Next() {
		var it model.ServiceCartItem
		if err := rows.Scan(&it.ID, &it.SessionID, &it.ItemKind, &it.ItemID, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Put adds a line or replaces the quantity of an existing one.
func (r *ServiceCartRepo) Put(ctx context.Context, it model.ServiceCartItem) error {
	const q = `INSERT INTO service_cart_items (session_id, item_kind, item_id, quantity)
	           VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE quantity = VALUES(quantity)`
	_, err := r.db.ExecContext(ctx, q, it.SessionID, it.ItemKind, it.ItemID, it.Quantity)
	return err
}

// Remove deletes one line of the session's cart.
func (r *ServiceCartRepo) Remove(ctx context.Context, sessionID string, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM service_cart_items WHERE id = ? AND session_id = ?`, id, sessionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCartItemMissing
	}
	return nil
}

// Clear empties the session's cart.
func (r *ServiceCartRepo) Clear(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM service_cart_items WHERE session_id = ?`, sessionID)
	return err
}
