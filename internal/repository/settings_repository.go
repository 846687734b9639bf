package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// SettingsRepo reads and writes site_settings.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) All(ctx context.Context) ([]model.SiteSetting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT setting_key, setting_value, updated_at FROM site_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.SiteSetting{}
	for rows.Next() {
		var s model.SiteSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get returns one value or ErrSettingNotFound.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT setting_value FROM site_settings WHERE setting_key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	return v, err
}

// Set stores a value, creating the key when missing.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	const q = `INSERT INTO site_settings (setting_key, setting_value) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)`
	_, err := r.db.ExecContext(ctx, q, key, value)
	return err
}
