// Package queue carries the site's change feed and booking events over a
// RabbitMQ topic exchange.
package queue

import (
	"strings"
	"time"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// Routing keys.  Table changes go to "change.<table>".
const (
	RoutingKeyBookingCreated = "booking.created"
	changePrefix             = "change."
)

// ChangeKey is the routing key announcing a change of table.
func ChangeKey(table string) string { return changePrefix + table }

// TableFromKey extracts the table name of a change routing key.
func TableFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, changePrefix) {
		return "", false
	}
	t := strings.TrimPrefix(key, changePrefix)
	return t, t != ""
}

// Change operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent tells subscribers that a row of Table changed.  Receivers
// reload the whole table rather than patching, so the row id is
// informational.
type ChangeEvent struct {
	Table string    `json:"table"`
	Op    string    `json:"op"`
	RowID uint64    `json:"row_id,omitempty"`
	At    time.Time `json:"at"`
}

// BookingCreatedEvent is published after a booking has been stored.  It
// holds enough to notify the back-office without a database lookup.
type BookingCreatedEvent struct {
	BookingID       uint64 `json:"booking_id"`
	YachtID         uint64 `json:"yacht_id"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	BookingDate     string `json:"booking_date"`
	StartTime       string `json:"start_time,omitempty"`
	DurationHours   int    `json:"duration_hours"`
	TotalPriceCents int64  `json:"total_price_cents"`
	OptionCount     int    `json:"option_count"`
	CreatedAt       string `json:"created_at"`
}

// NewBookingCreatedEvent builds the event of a stored booking.
func NewBookingCreatedEvent(b model.Booking, now time.Time) BookingCreatedEvent {
	return BookingCreatedEvent{
		BookingID:       b.ID,
		YachtID:         b.YachtID,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		BookingDate:     b.BookingDate.Format("2006-01-02"),
		StartTime:       b.StartTime,
		DurationHours:   b.DurationHours,
		TotalPriceCents: b.TotalPriceCents,
		OptionCount:     len(b.Options),
		CreatedAt:       now.UTC().Format(time.RFC3339),
	}
}
