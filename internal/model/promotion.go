package model

import "time"

// Promotion is a time-bounded discount shown for display purposes.  It
// never changes the price that is stored on a booking.
//
// Fields:
//  ID                  – promotions.id
//  Title, TitleAR      – badge label in both languages.
//  Catalog             – yachts or services; catalog-wide promotions only
//                        apply inside their own catalog.
//  ItemKind, ItemID    – optional owning item; both nil means catalog-wide.
//  DiscountPercent     – 0..100, zero when unused.
//  DiscountAmountCents – flat discount in cents, zero when unused.
//  IsActive            – admin switch.
//  ValidFrom/Until     – optional inclusive window.
type Promotion struct {
	ID                  uint64     `json:"id"`
	Title               string     `json:"title"`
	TitleAR             string     `json:"title_ar,omitempty"`
	Catalog             Catalog    `json:"catalog"`
	ItemKind            *ItemKind  `json:"item_kind,omitempty"`
	ItemID              *uint64    `json:"item_id,omitempty"`
	DiscountPercent     float64    `json:"discount_percent"`
	DiscountAmountCents int64      `json:"discount_amount_cents"`
	IsActive            bool       `json:"is_active"`
	ValidFrom           *time.Time `json:"valid_from,omitempty"`
	ValidUntil          *time.Time `json:"valid_until,omitempty"`
}

// ItemSpecific reports whether the promotion is bound to a single item.
func (p Promotion) ItemSpecific() bool { return p.ItemID != nil }
