package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// Store writes a booking and its option snapshots as one unit.  On
// success b.ID is set and every option row references it.
type Store interface {
	CreateBooking(ctx context.Context, b *model.Booking, opts []model.BookingOption) error
}

// StepStore is a backend that can only write the two parts separately.
type StepStore interface {
	InsertBooking(ctx context.Context, b *model.Booking) error
	InsertOptions(ctx context.Context, bookingID uint64, opts []model.BookingOption) error
	DeleteBooking(ctx context.Context, id uint64) error
}

// PartialBookingError reports a booking row that survived a failed option
// insert because the compensating delete failed too.  The row carries
// options_expected so it shows up in the incomplete bookings listing.
type PartialBookingError struct {
	BookingID uint64
	Err       error
	Cleanup   error
}

func (e *PartialBookingError) Error() string {
	return fmt.Sprintf("booking %d left without options: %v (cleanup: %v)", e.BookingID, e.Err, e.Cleanup)
}

func (e *PartialBookingError) Unwrap() error { return e.Err }

const compensateTimeout = 5 * time.Second

// Compensating adapts a StepStore into a Store by deleting the booking
// row when its options cannot be written.
type Compensating struct {
	steps StepStore
	log   *slog.Logger
}

func NewCompensating(steps StepStore, log *slog.Logger) *Compensating {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Compensating{steps: steps, log: log}
}

func (c *Compensating) CreateBooking(ctx context.Context, b *model.Booking, opts []model.BookingOption) error {
	if err := c.steps.InsertBooking(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	if len(opts) == 0 {
		return nil
	}
	for i := range opts {
		opts[i].BookingID = b.ID
	}
	err := c.steps.InsertOptions(ctx, b.ID, opts)
	if err == nil {
		return nil
	}

	// The request context may already be the cause of the failure.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()
	if derr := c.steps.DeleteBooking(dctx, b.ID); derr != nil {
		c.log.Error("orphaned booking after option insert failure",
			slog.Uint64("booking_id", b.ID),
			slog.Int("options_expected", len(opts)),
			slog.Any("err", err),
			slog.Any("cleanup_err", derr),
		)
		return &PartialBookingError{BookingID: b.ID, Err: err, Cleanup: derr}
	}
	c.log.Warn("booking rolled back after option insert failure",
		slog.Uint64("booking_id", b.ID),
		slog.Any("err", err),
	)
	b.ID = 0
	return fmt.Errorf("insert booking options: %w", err)
}
