package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/yacht-charter/internal/model"
	"github.com/iliyamo/yacht-charter/internal/pricing"
)

var ErrYachtUnavailable = errors.New("yacht not available for booking")

// CatalogReader loads the yacht being booked and its options.
type CatalogReader interface {
	GetYacht(ctx context.Context, id uint64) (*model.Yacht, error)
	ListOptions(ctx context.Context, yachtID uint64) ([]model.YachtOption, error)
}

// PromotionReader lists promotions for the informational badge.
type PromotionReader interface {
	ListPromotions(ctx context.Context) ([]model.Promotion, error)
}

// EventPublisher announces a stored booking.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, b model.Booking) error
}

// Service prices and stores bookings.  promos and events may be nil.
type Service struct {
	catalog CatalogReader
	promos  PromotionReader
	store   Store
	events  EventPublisher
	calc    *pricing.Calculator
	log     *slog.Logger
	now     func() time.Time
}

func NewService(catalog CatalogReader, promos PromotionReader, store Store, events EventPublisher, calc *pricing.Calculator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		catalog: catalog,
		promos:  promos,
		store:   store,
		events:  events,
		calc:    calc,
		log:     log,
		now:     time.Now,
	}
}

// Preview is what the confirmation step shows: the yacht, the resolved
// options and the engine quote.
type Preview struct {
	Yacht model.Yacht   `json:"yacht"`
	Quote pricing.Quote `json:"quote"`
}

// Prepare loads the yacht and prices the draft without writing anything.
func (s *Service) Prepare(ctx context.Context, d Draft) (*Preview, error) {
	y, err := s.catalog.GetYacht(ctx, d.YachtID)
	if err != nil {
		return nil, err
	}
	if !y.IsAvailable {
		return nil, ErrYachtUnavailable
	}
	opts, err := s.catalog.ListOptions(ctx, y.ID)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	q, err := s.calc.Quote(y.CatalogItem(), int(d.Hours), d.OptionIDs, opts, s.promotions(ctx), s.now())
	if err != nil {
		return nil, err
	}
	return &Preview{Yacht: *y, Quote: q}, nil
}

// promotions is best effort; a failed lookup only hides the badge.
func (s *Service) promotions(ctx context.Context) []model.Promotion {
	if s.promos == nil {
		return nil
	}
	ps, err := s.promos.ListPromotions(ctx)
	if err != nil {
		s.log.Warn("promotions unavailable, quoting without badge", slog.Any("err", err))
		return nil
	}
	return ps
}

// Submit validates d, prices it and stores a pending booking with a
// snapshot of every selected option.  The stored total is the engine
// total; promotions are never subtracted.
func (s *Service) Submit(ctx context.Context, d Draft) (*model.Booking, error) {
	d = d.Normalize()
	if err := ValidateDraft(d); err != nil {
		return nil, err
	}
	p, err := s.Prepare(ctx, d)
	if err != nil {
		return nil, err
	}
	date, _ := time.Parse(DateLayout, d.BookingDate)

	b := &model.Booking{
		YachtID:         p.Yacht.ID,
		CustomerName:    d.CustomerName,
		CustomerEmail:   d.CustomerEmail,
		CustomerPhone:   d.CustomerPhone,
		BookingDate:     date,
		StartTime:       d.StartTime,
		DurationHours:   int(d.Hours),
		TotalPriceCents: p.Quote.TotalCents,
		Status:          model.BookingPending,
		Notes:           d.Notes,
		OptionsExpected: len(p.Quote.Options),
	}
	snaps := make([]model.BookingOption, 0, len(p.Quote.Options))
	for _, o := range p.Quote.Options {
		snaps = append(snaps, model.BookingOption{
			OptionID:         o.ID,
			OptionName:       o.Name,
			OptionPriceCents: o.PriceCents,
		})
	}

	if err := s.store.CreateBooking(ctx, b, snaps); err != nil {
		return nil, err
	}
	b.Options = snaps

	s.log.Info("booking created",
		slog.Uint64("booking_id", b.ID),
		slog.Uint64("yacht_id", b.YachtID),
		slog.Int64("total_price_cents", b.TotalPriceCents),
		slog.Int("options", len(snaps)),
	)
	if s.events != nil {
		if err := s.events.PublishBookingCreated(ctx, *b); err != nil {
			s.log.Warn("booking.created not published", slog.Uint64("booking_id", b.ID), slog.Any("err", err))
		}
	}
	return b, nil
}
