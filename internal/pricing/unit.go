// Package pricing is the single source of truth for catalog prices.  Every
// surface (booking, carts, yacht details, admin quotes) goes through it;
// nothing else derives a price inline.
//
// All amounts are integer cents.
package pricing

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// Hour bounds accepted for a yacht booking.  Values outside are rejected,
// never clamped.
const (
	MinHours = 1
	MaxHours = 72
)

// Water sport duration buckets in minutes.
const (
	Bucket30Min = 30
	Bucket60Min = 60
)

var (
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnknownKind     = errors.New("unknown item kind")

	// ErrInvalidBucket is the water sport flavour of ErrInvalidDuration.
	ErrInvalidBucket = fmt.Errorf("%w: minutes must be 30 or 60", ErrInvalidDuration)
)

// Calculator resolves unit prices and totals.  It holds no state besides
// the logger used for data-integrity warnings, so one instance is shared
// by every handler.
type Calculator struct {
	log *slog.Logger
}

// NewCalculator returns a Calculator writing warnings to log.  A nil
// logger discards them.
func NewCalculator(log *slog.Logger) *Calculator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Calculator{log: log}
}

// UnitPrice returns the base price of item for the given duration or
// quantity, before options and discounts.
//
//	yacht              hours × price_per_hour, hours in [MinHours, MaxHours]
//	water sport        price_30min or price_60min, quantity must be 30 or 60
//	food               quantity × price_per_person, quantity >= 1
//	additional service flat price, quantity ignored
func (c *Calculator) UnitPrice(item model.CatalogItem, quantity int) (int64, error) {
	switch item.Kind {
	case model.KindYacht:
		if quantity < MinHours || quantity > MaxHours {
			return 0, fmt.Errorf("%w: %d hours, allowed %d-%d", ErrInvalidDuration, quantity, MinHours, MaxHours)
		}
		return int64(quantity) * c.base(item, item.PricePerHour, "price_per_hour"), nil
	case model.KindWaterSport:
		switch quantity {
		case Bucket30Min:
			return c.base(item, item.Price30Min, "price_30min"), nil
		case Bucket60Min:
			return c.base(item, item.Price60Min, "price_60min"), nil
		}
		return 0, fmt.Errorf("%w, got %d", ErrInvalidBucket, quantity)
	case model.KindFood:
		if quantity < 1 {
			return 0, fmt.Errorf("%w: %d persons", ErrInvalidQuantity, quantity)
		}
		return int64(quantity) * c.base(item, item.PricePerPerson, "price_per_person"), nil
	case model.KindAdditionalService:
		return c.base(item, item.Price, "price"), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, item.Kind)
}

// base dereferences a nullable price column.  NULL counts as zero so a
// half-configured item never blocks a booking, but it is logged.
func (c *Calculator) base(item model.CatalogItem, price *int64, field string) int64 {
	if price == nil {
		c.log.Warn("catalog item has no base price, using 0",
			slog.String("kind", string(item.Kind)),
			slog.Uint64("item_id", item.ID),
			slog.String("field", field),
		)
		return 0
	}
	return *price
}
