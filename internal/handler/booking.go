package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yacht-charter/internal/booking"
	"github.com/iliyamo/yacht-charter/internal/i18n"
	"github.com/iliyamo/yacht-charter/internal/middleware"
	"github.com/iliyamo/yacht-charter/internal/model"
	"github.com/iliyamo/yacht-charter/internal/repository"
	"github.com/iliyamo/yacht-charter/internal/whatsapp"
)

// BookingService prices and stores booking drafts.
type BookingService interface {
	Prepare(ctx context.Context, d booking.Draft) (*booking.Preview, error)
	Submit(ctx context.Context, d booking.Draft) (*model.Booking, error)
}

// BookingHandler serves the booking form and the WhatsApp hand-off.
type BookingHandler struct {
	Bookings BookingService
	Settings SettingsReader
	Currency string
	Timeout  time.Duration
	Log      *slog.Logger
}

func NewBookingHandler(bookings BookingService, settings SettingsReader, currency string, timeout time.Duration, log *slog.Logger) *BookingHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BookingHandler{Bookings: bookings, Settings: settings, Currency: currency, Timeout: timeout, Log: orDiscard(log)}
}

type createBookingRequest struct {
	booking.Draft
	// Confirm submits the draft.  Without it the draft is only validated
	// and priced for the confirmation step.
	Confirm bool `json:"confirm"`
}

// CreateBooking walks a draft through details, confirmation and
// submission.  Validation errors stop at details with 422; a confirmed
// draft becomes one pending booking and its option snapshots, or nothing.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	flow := booking.NewFlow()
	if err := flow.Update(req.Draft); err != nil {
		return fail(c, h.Log, err)
	}
	if err := flow.Continue(); err != nil {
		return fail(c, h.Log, err)
	}
	preview, err := h.Bookings.Prepare(ctx, flow.Draft())
	if err != nil {
		return fail(c, h.Log, err)
	}
	if !req.Confirm {
		return c.JSON(http.StatusOK, echo.Map{"state": flow.State(), "preview": preview})
	}

	var created *model.Booking
	err = flow.Submit(ctx, func(ctx context.Context, d booking.Draft) error {
		b, err := h.Bookings.Submit(ctx, d)
		created = b
		return err
	})
	if err != nil {
		h.Log.Warn("booking submission failed", slog.String("state", string(flow.State())), slog.String("error", err.Error()))
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"state":   flow.State(),
		"message": i18n.T(middleware.Lang(c), i18n.BookingSubmitted),
		"booking": created,
	})
}

// whatsappNumber reads the number from site settings.  A missing setting
// is reported as ErrNoNumber.
func whatsappNumber(ctx context.Context, s SettingsReader) (string, error) {
	n, err := s.Get(ctx, model.SettingWhatsAppNumber)
	if errors.Is(err, repository.ErrSettingNotFound) {
		return "", whatsapp.ErrNoNumber
	}
	return n, err
}

// WhatsAppBooking turns a draft into a wa.me link, or with ?format=qr a
// PNG QR code of that link.  Nothing is stored.
func (h *BookingHandler) WhatsAppBooking(c echo.Context) error {
	var d booking.Draft
	if err := c.Bind(&d); err != nil {
		return badRequest(c)
	}
	d = d.Normalize()
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	p, err := h.Bookings.Prepare(ctx, d)
	if err != nil {
		return fail(c, h.Log, err)
	}
	number, err := whatsappNumber(ctx, h.Settings)
	if err != nil {
		return fail(c, h.Log, err)
	}
	lang := middleware.Lang(c)
	name := p.Yacht.Name
	if lang == i18n.AR && p.Yacht.NameAR != "" {
		name = p.Yacht.NameAR
	}
	text := whatsapp.Compose(whatsapp.BookingRequest{
		YachtName:     name,
		CustomerName:  d.CustomerName,
		CustomerEmail: d.CustomerEmail,
		CustomerPhone: d.CustomerPhone,
		Date:          d.BookingDate,
		StartTime:     d.StartTime,
		Hours:         int(d.Hours),
		Options:       p.Quote.Options,
		TotalCents:    p.Quote.TotalCents,
		Currency:      h.Currency,
		Promotion:     p.Quote.Promotion,
		Lang:          lang,
	})
	return respondLink(c, h.Log, number, text)
}

// respondLink writes {"url": ...} or, for ?format=qr, the QR PNG.
func respondLink(c echo.Context, log *slog.Logger, number, text string) error {
	link, err := whatsapp.Link(number, text)
	if err != nil {
		return fail(c, log, err)
	}
	if c.QueryParam("format") == "qr" {
		png, err := whatsapp.QR(link, 256)
		if err != nil {
			return fail(c, log, err)
		}
		return c.Blob(http.StatusOK, "image/png", png)
	}
	return c.JSON(http.StatusOK, echo.Map{"url": link, "message": text})
}
