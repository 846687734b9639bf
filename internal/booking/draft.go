// Package booking turns a customer's draft into a persisted pending
// booking.  It owns draft validation, the submission state machine and
// the all-or-nothing write of a booking with its option snapshots.
package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DateLayout is the wire format of Draft.BookingDate.
const DateLayout = "2006-01-02"

// Hours is the requested charter duration.  The form sends either a
// number or the raw input string; an emptied input decodes to 0 so that
// validation rejects it instead of silently falling back to one hour.
type Hours int

func (h *Hours) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*h = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return h.parse(s)
	}
	return h.parse(string(b))
}

func (h *Hours) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*h = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("hours: %q is not a whole number", s)
	}
	*h = Hours(n)
	return nil
}

// Draft is the booking request as entered in the booking form.  It is
// never stored partially: it becomes one bookings row plus its option
// rows, or nothing.
type Draft struct {
	YachtID       uint64   `json:"yacht_id"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
	CustomerPhone string   `json:"customer_phone"`
	BookingDate   string   `json:"booking_date"`
	StartTime     string   `json:"start_time,omitempty"`
	Hours         Hours    `json:"hours"`
	OptionIDs     []uint64 `json:"option_ids,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// Normalize trims surrounding whitespace from the text fields.
func (d Draft) Normalize() Draft {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.CustomerEmail = strings.TrimSpace(d.CustomerEmail)
	d.CustomerPhone = strings.TrimSpace(d.CustomerPhone)
	d.BookingDate = strings.TrimSpace(d.BookingDate)
	d.StartTime = strings.TrimSpace(d.StartTime)
	d.Notes = strings.TrimSpace(d.Notes)
	return d
}
