package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// YachtRepo reads yachts together with their images and options.  Yacht
// rows are maintained by the admin tooling; this service only reads them.
type YachtRepo struct {
	db *sql.DB
}

func NewYachtRepo(db *sql.DB) *YachtRepo { return &YachtRepo{db: db} }

const yachtCols = `id, name, name_ar, COALESCE(description, ''), COALESCE(description_ar, ''),
	capacity, length_ft, price_per_hour_cents, price_per_day_cents, is_available, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanYacht(s rowScanner) (model.Yacht, error) {
	var y model.Yacht
	var perHour, perDay sql.NullInt64
	err := s.Scan(&y.ID, &y.Name, &y.NameAR, &y.Description, &y.DescriptionAR,
		&y.Capacity, &y.LengthFt, &perHour, &perDay, &y.IsAvailable, &y.CreatedAt, &y.UpdatedAt)
	y.PricePerHourCents = nullInt(perHour)
	y.PricePerDayCents = nullInt(perDay)
	return y, err
}

// ListYachts returns yachts ordered by name.  With availableOnly the
// unavailable ones are left out.
func (r *YachtRepo) ListYachts(ctx context.Context, availableOnly bool) ([]model.Yacht, error) {
	q := `SELECT ` + yachtCols + ` FROM yachts`
	if availableOnly {
		q += ` WHERE is_available = TRUE`
	}
	q += ` ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Yacht{}
	for rows.Next() {
		y, err := scanYacht(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

// GetYacht returns one yacht or ErrYachtNotFound.
func (r *YachtRepo) GetYacht(ctx context.Context, id uint64) (*model.Yacht, error) {
	y, err := scanYacht(r.db.QueryRowContext(ctx, `SELECT `+yachtCols+` FROM yachts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrYachtNotFound
	}
	if err != nil {
		return nil, err
	}
	return &y, nil
}

// ListImages returns the yacht's images in display order.
func (r *YachtRepo) ListImages(ctx context.Context, yachtID uint64) ([]model.YachtImage, error) {
	const q = `SELECT id, yacht_id, url, display_order FROM yacht_images WHERE yacht_id = ? ORDER BY display_order, id`
	rows, err := r.db.QueryContext(ctx, q, yachtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.YachtImage{}
	for rows.Next() {
		var img model.YachtImage
		if err := rows.Scan(&img.ID, &img.YachtID, &img.URL, &img.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// ListOptions returns every option of the yacht, active or not, in
// display order.  Pricing decides what an inactive selection is worth.
func (r *YachtRepo) ListOptions(ctx context.Context, yachtID uint64) ([]model.YachtOption, error) {
	const q = `SELECT id, yacht_id, name, name_ar, price_cents, is_active, display_order
	           FROM yacht_options WHERE yacht_id = ? ORDER BY display_order, id`
	rows, err := r.db.QueryContext(ctx, q, yachtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.YachtOption{}
	for rows.Next() {
		var o model.YachtOption
		if err := rows.Scan(&o.ID, &o.YachtID, &o.Name, &o.NameAR, &o.PriceCents, &o.IsActive, &o.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
