package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// ServiceRepo reads the add-on catalogs: water sports, food and
// additional services.
type ServiceRepo struct {
	db *sql.DB
}

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

func (r *ServiceRepo) ListWaterSports(ctx context.Context) ([]model.WaterSport, error) {
	const q = `SELECT id, name, name_ar, price_30min_cents, price_60min_cents, is_available
	           FROM water_sports WHERE is_available = TRUE ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.WaterSport{}
	for rows.Next() {
		var w model.WaterSport
		var p30, p60 sql.NullInt64
		if err := rows.Scan(&w.ID, &w.Name, &w.NameAR, &p30, &p60, &w.IsAvailable); err != nil {
			return nil, err
		}
		w.Price30MinCents, w.Price60MinCents = nullInt(p30), nullInt(p60)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *ServiceRepo) ListFood(ctx context.Context) ([]model.FoodItem, error) {
	const q = `SELECT id, name, name_ar, price_per_person_cents, is_available
	           FROM food_items WHERE is_available = TRUE ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.FoodItem{}
	for rows.Next() {
		var f model.FoodItem
		var pp sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Name, &f.NameAR, &pp, &f.IsAvailable); err != nil {
			return nil, err
		}
		f.PricePerPersonCents = nullInt(pp)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *ServiceRepo) ListAdditional(ctx context.Context) ([]model.AdditionalService, error) {
	const q = `SELECT id, name, name_ar, price_cents, is_available
	           FROM additional_services WHERE is_available = TRUE ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AdditionalService{}
	for rows.Next() {
		var a model.AdditionalService
		var p sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Name, &a.NameAR, &p, &a.IsAvailable); err != nil {
			return nil, err
		}
		a.PriceCents = nullInt(p)
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetItem loads any add-on as its pricing view, or ErrItemNotFound.
func (r *ServiceRepo) GetItem(ctx context.Context, kind model.ItemKind, id uint64) (model.CatalogItem, error) {
	var (
		item model.CatalogItem
		err  error
	)
	switch kind {
	case model.KindWaterSport:
		var w model.WaterSport
		var p30, p60 sql.NullInt64
		err = r.db.QueryRowContext(ctx,
			`SELECT id, name, name_ar, price_30min_cents, price_60min_cents, is_available FROM water_sports WHERE id = ?`, id).
			Scan(&w.ID, &w.Name, &w.NameAR, &p30, &p60, &w.IsAvailable)
		w.Price30MinCents, w.Price60MinCents = nullInt(p30), nullInt(p60)
		item = w.CatalogItem()
	case model.KindFood:
		var f model.FoodItem
		var pp sql.NullInt64
		err = r.db.QueryRowContext(ctx,
			`SELECT id, name, name_ar, price_per_person_cents, is_available FROM food_items WHERE id = ?`, id).
			Scan(&f.ID, &f.Name, &f.NameAR, &pp, &f.IsAvailable)
		f.PricePerPersonCents = nullInt(pp)
		item = f.CatalogItem()
	case model.KindAdditionalService:
		var a model.AdditionalService
		var p sql.NullInt64
		err = r.db.QueryRowContext(ctx,
			`SELECT id, name, name_ar, price_cents, is_available FROM additional_services WHERE id = ?`, id).
			Scan(&a.ID, &a.Name, &a.NameAR, &p, &a.IsAvailable)
		a.PriceCents = nullInt(p)
		item = a.CatalogItem()
	default:
		return model.CatalogItem{}, fmt.Errorf("%w: kind %q", ErrItemNotFound, kind)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.CatalogItem{}, ErrItemNotFound
	}
	if err != nil {
		return model.CatalogItem{}, err
	}
	return item, nil
}
