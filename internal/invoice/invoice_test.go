package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/yacht-charter/internal/model"
)

func sample() Invoice {
	return Invoice{
		Booking: model.Booking{
			ID:              42,
			CustomerName:    "Jane Doe",
			CustomerEmail:   "jane@example.com",
			CustomerPhone:   "+971501234567",
			BookingDate:     time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
			StartTime:       "10:00",
			DurationHours:   3,
			TotalPriceCents: 170000,
			Status:          model.BookingConfirmed,
			Options:         []model.BookingOption{{OptionName: "Jet Ski", OptionPriceCents: 20000}},
		},
		YachtName:  "Azimut 60",
		VATPercent: 5,
		Currency:   "AED",
		IssuedAt:   time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
	}
}

func TestCompute(t *testing.T) {
	got := sample().Compute()
	assert.Equal(t, Totals{
		CharterCents:  150000,
		OptionsCents:  20000,
		SubtotalCents: 170000,
		VATCents:      8500,
		GrossCents:    178500,
	}, got)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderNeedsStoredBooking(t *testing.T) {
	inv := sample()
	inv.Booking.ID = 0
	assert.Error(t, Render(&bytes.Buffer{}, inv))
}

func TestReference(t *testing.T) {
	assert.Equal(t, "YC-000042", sample().Reference())
}
