package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// BookingRepo stores bookings and their option snapshots.  A booking is
// always written as status pending with its options_expected count so an
// incomplete write can be found later.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `b.id, b.yacht_id, b.customer_name, b.customer_email, b.customer_phone, b.booking_date,
	b.start_time, b.duration_hours, b.total_price_cents, b.status, COALESCE(b.notes, ''), b.options_expected,
	b.created_at, b.updated_at`

func scanBooking(s rowScanner) (model.Booking, error) {
	var b model.Booking
	err := s.Scan(&b.ID, &b.YachtID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.BookingDate,
		&b.StartTime, &b.DurationHours, &b.TotalPriceCents, &b.Status, &b.Notes, &b.OptionsExpected,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// CreateBooking writes the booking row and its option rows in one
// transaction.  On success b.ID is set and each option carries it.
// Failures come back classified as transient or permanent.
func (r *BookingRepo) CreateBooking(ctx context.Context, b *model.Booking, opts []model.BookingOption) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := r.insertBookingTx(ctx, tx, b); err != nil {
		return Classify(err)
	}
	if err := r.insertOptionsTx(ctx, tx, b.ID, opts); err != nil {
		return Classify(err)
	}
	if err := tx.Commit(); err != nil {
		return Classify(err)
	}
	committed = true
	for i := range opts {
		opts[i].BookingID = b.ID
	}
	return nil
}

// InsertBooking writes only the booking row.  Used by the two-step
// booking writer, see DeleteBooking.
func (r *BookingRepo) InsertBooking(ctx context.Context, b *model.Booking) error {
	return r.insertBookingTx(ctx, r.db, b)
}

// InsertOptions writes the option snapshots of an existing booking.
func (r *BookingRepo) InsertOptions(ctx context.Context, bookingID uint64, opts []model.BookingOption) error {
	return r.insertOptionsTx(ctx, r.db, bookingID, opts)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *BookingRepo) insertBookingTx(ctx context.Context, ex execer, b *model.Booking) error {
	if b.Status == "" {
		b.Status = model.BookingPending
	}
	const q = `INSERT INTO bookings (yacht_id, customer_name, customer_email, customer_phone, booking_date,
	           start_time, duration_hours, total_price_cents, status, notes, options_expected)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := ex.ExecContext(ctx, q, b.YachtID, b.CustomerName, b.CustomerEmail, b.CustomerPhone,
		b.BookingDate.Format("2006-01-02"), b.StartTime, b.DurationHours, b.TotalPriceCents, b.Status,
		b.Notes, b.OptionsExpected)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// insertOptionsTx writes all snapshots in a single statement.  An empty
// slice is a no-op.
func (r *BookingRepo) insertOptionsTx(ctx context.Context, ex execer, bookingID uint64, opts []model.BookingOption) error {
	if len(opts) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_options (booking_id, option_id, option_name, option_price_cents) VALUES `)
	args := make([]any, 0, len(opts)*4)
	for i, o := range opts {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, bookingID, o.OptionID, o.OptionName, o.OptionPriceCents)
	}
	_, err := ex.ExecContext(ctx, sb.String(), args...)
	return err
}

// DeleteBooking removes a booking; its option rows go with it by cascade.
func (r *BookingRepo) DeleteBooking(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// List returns bookings newest first, optionally filtered by status.
func (r *BookingRepo) List(ctx context.Context, status model.BookingStatus) ([]model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings b`
	var args []any
	if status != "" {
		q += ` WHERE b.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY b.created_at DESC, b.id DESC`
	return r.query(ctx, q, args...)
}

// ListIncomplete returns bookings whose stored option rows do not match
// options_expected, i.e. writes that were interrupted half way.
func (r *BookingRepo) ListIncomplete(ctx context.Context) ([]model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings b
	      LEFT JOIN booking_options o ON o.booking_id = b.id
	      GROUP BY b.id
	      HAVING COUNT(o.id) <> b.options_expected
	      ORDER BY b.created_at DESC, b.id DESC`
	return r.query(ctx, q)
}

func (r *BookingRepo) query(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Get returns a booking with its snapshotted options.  Option prices come
// from booking_options only and are never re-read from yacht_options.
func (r *BookingRepo) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings b WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, booking_id, option_id, option_name, option_price_cents
	           FROM booking_options WHERE booking_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	b.Options = []model.BookingOption{}
	for rows.Next() {
		var o model.BookingOption
		if err := rows.Scan(&o.ID, &o.BookingID, &o.OptionID, &o.OptionName, &o.OptionPriceCents); err != nil {
			return nil, err
		}
		b.Options = append(b.Options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateStatus sets the status of a booking.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrBookingNotFound
	}
	_, err = r.db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	return err
}
