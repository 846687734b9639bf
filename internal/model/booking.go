package model

import "time"

// BookingStatus enumerates the values of bookings.status.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Booking mirrors the `bookings` table.  TotalPriceCents is always the
// undiscounted engine total.  OptionsExpected records how many
// booking_options rows were written with it so a booking missing its
// option rows can be found later.
type Booking struct {
	ID              uint64          `json:"id"`
	YachtID         uint64          `json:"yacht_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	BookingDate     time.Time       `json:"booking_date"`
	StartTime       string          `json:"start_time,omitempty"`
	DurationHours   int             `json:"duration_hours"`
	TotalPriceCents int64           `json:"total_price_cents"`
	Status          BookingStatus   `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	OptionsExpected int             `json:"options_expected"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Options         []BookingOption `json:"options,omitempty"`
}

// BookingOption snapshots an option's name and price at booking time.
// It is never re-joined to yacht_options for pricing.
type BookingOption struct {
	ID               uint64 `json:"id"`
	BookingID        uint64 `json:"booking_id"`
	OptionID         uint64 `json:"option_id"`
	OptionName       string `json:"option_name"`
	OptionPriceCents int64  `json:"option_price_cents"`
}

// ServiceCartItem mirrors `service_cart_items`: one line of the services
// cart of an anonymous session.  Quantity is minutes (30/60) for water
// sports, persons for food and ignored for additional services.
type ServiceCartItem struct {
	ID        uint64    `json:"id"`
	SessionID string    `json:"-"`
	ItemKind  ItemKind  `json:"item_kind"`
	ItemID    uint64    `json:"item_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// SiteSetting is a key/value row of `site_settings`.
type SiteSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well known site setting keys.
const (
	SettingWhatsAppNumber = "whatsapp_number"
	SettingContactEmail   = "contact_email"
	SettingCurrency       = "currency"
)
