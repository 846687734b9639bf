package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// PromotionRepo lists promotions.  It returns every row; whether one is
// currently active is decided by the pricing engine against "now".
type PromotionRepo struct {
	db *sql.DB
}

func NewPromotionRepo(db *sql.DB) *PromotionRepo { return &PromotionRepo{db: db} }

func (r *PromotionRepo) ListPromotions(ctx context.Context) ([]model.Promotion, error) {
	const q = `SELECT id, title, title_ar, catalog, item_kind, item_id, discount_percent,
	                  discount_amount_cents, is_active, valid_from, valid_until
	           FROM promotions ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Promotion{}
	for rows.Next() {
		var p model.Promotion
		var kind sql.NullString
		var itemID sql.NullInt64
		var from, until sql.NullTime
		if err := rows.Scan(&p.ID, &p.Title, &p.TitleAR, &p.Catalog, &kind, &itemID, &p.DiscountPercent,
			&p.DiscountAmountCents, &p.IsActive, &from, &until); err != nil {
			return nil, err
		}
		if kind.Valid {
			k := model.ItemKind(kind.String)
			p.ItemKind = &k
		}
		p.ItemID = nullUint(itemID)
		if from.Valid {
			t := from.Time
			p.ValidFrom = &t
		}
		if until.Valid {
			t := until.Time
			p.ValidUntil = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
