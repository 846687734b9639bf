package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yacht-charter/internal/booking"
	"github.com/iliyamo/yacht-charter/internal/i18n"
	"github.com/iliyamo/yacht-charter/internal/invoice"
	"github.com/iliyamo/yacht-charter/internal/middleware"
	"github.com/iliyamo/yacht-charter/internal/model"
	"github.com/iliyamo/yacht-charter/internal/pricing"
	"github.com/iliyamo/yacht-charter/internal/queue"
)

// AdminBookingStore is the booking management surface of the back-office.
type AdminBookingStore interface {
	List(ctx context.Context, status model.BookingStatus) ([]model.Booking, error)
	ListIncomplete(ctx context.Context) ([]model.Booking, error)
	Get(ctx context.Context, id uint64) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) error
	DeleteBooking(ctx context.Context, id uint64) error
}

type SettingsWriter interface {
	Set(ctx context.Context, key, value string) error
}

// AdminHandler serves /v1/admin.  Every route sits behind JWTAuth and
// RequireRole("admin").
type AdminHandler struct {
	Bookings   AdminBookingStore
	Yachts     YachtReader
	Settings   SettingsWriter
	Changes    ChangePublisher
	Calc       *pricing.Calculator
	VATPercent float64
	Currency   string
	Log        *slog.Logger
	Now        func() time.Time
}

func (h *AdminHandler) logger() *slog.Logger { return orDiscard(h.Log) }

func (h *AdminHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *AdminHandler) changed(ctx context.Context, table, op string, id uint64) {
	if h.Changes == nil {
		return
	}
	if err := h.Changes.PublishChange(ctx, table, op, id); err != nil {
		h.logger().Warn("change not published", slog.String("table", table), slog.String("error", err.Error()))
	}
}

func invalidStatus(c echo.Context) error {
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": i18n.T(middleware.Lang(c), i18n.InvalidStatus)})
}

// ListBookings lists bookings, newest first, optionally by ?status=.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	status := model.BookingStatus(strings.ToLower(c.QueryParam("status")))
	if status != "" && !status.Valid() {
		return invalidStatus(c)
	}
	bs, err := h.Bookings.List(c.Request().Context(), status)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bs})
}

// ListIncomplete lists bookings missing some of their option rows.
func (h *AdminHandler) ListIncomplete(c echo.Context) error {
	bs, err := h.Bookings.ListIncomplete(c.Request().Context())
	if err != nil {
		return fail(c, h.logger(), err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bs})
}

// GetBooking returns a booking with its option snapshots.
func (h *AdminHandler) GetBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c)
	}
	b, err := h.Bookings.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	return c.JSON(http.StatusOK, b)
}

type statusRequest struct {
	Status model.BookingStatus `json:"status"`
}

// UpdateStatus moves a booking to another status.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c)
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if !req.Status.Valid() {
		return invalidStatus(c)
	}
	ctx := c.Request().Context()
	if err := h.Bookings.UpdateStatus(ctx, id, req.Status); err != nil {
		return fail(c, h.logger(), err)
	}
	h.logger().Info("booking status changed",
		slog.Uint64("booking_id", id),
		slog.String("status", string(req.Status)),
		slog.String("admin", middleware.UserID(c)),
	)
	h.changed(ctx, "bookings", queue.OpUpdate, id)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

// DeleteBooking removes a booking and its option rows.
func (h *AdminHandler) DeleteBooking(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c)
	}
	ctx := c.Request().Context()
	if err := h.Bookings.DeleteBooking(ctx, id); err != nil {
		return fail(c, h.logger(), err)
	}
	h.logger().Info("booking deleted", slog.Uint64("booking_id", id), slog.String("admin", middleware.UserID(c)))
	h.changed(ctx, "bookings", queue.OpDelete, id)
	return c.NoContent(http.StatusNoContent)
}

// Invoice renders the booking as a PDF with VAT.  Amounts come from the
// stored booking, never from current catalog prices.
func (h *AdminHandler) Invoice(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c)
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.Get(ctx, id)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	name := fmt.Sprintf("Yacht #%d", b.YachtID)
	if y, err := h.Yachts.GetYacht(ctx, b.YachtID); err == nil {
		name = y.Name
	}
	var buf bytes.Buffer
	err = invoice.Render(&buf, invoice.Invoice{
		Booking:    *b,
		YachtName:  name,
		VATPercent: h.VATPercent,
		Currency:   h.Currency,
		IssuedAt:   h.now(),
	})
	if err != nil {
		return fail(c, h.logger(), err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=invoice-%d.pdf", b.ID))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

type adminQuoteRequest struct {
	YachtID   uint64        `json:"yacht_id"`
	Hours     booking.Hours `json:"hours"`
	OptionIDs []uint64      `json:"option_ids"`
}

// Quote prices the admin booking form: engine total, VAT and gross.
func (h *AdminHandler) Quote(c echo.Context) error {
	var req adminQuoteRequest
	if err := c.Bind(&req); err != nil || req.YachtID == 0 {
		return badRequest(c)
	}
	ctx := c.Request().Context()
	y, err := h.Yachts.GetYacht(ctx, req.YachtID)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	opts, err := h.Yachts.ListOptions(ctx, y.ID)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	total, err := h.Calc.Total(y.CatalogItem(), int(req.Hours), req.OptionIDs, opts)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	vat, gross := pricing.WithVAT(total, h.VATPercent)
	return c.JSON(http.StatusOK, echo.Map{
		"total_cents": total,
		"vat_percent": h.VATPercent,
		"vat_cents":   vat,
		"gross_cents": gross,
		"total":       pricing.Format(total, h.Currency),
		"vat":         pricing.Format(vat, h.Currency),
		"gross":       pricing.Format(gross, h.Currency),
	})
}

type settingRequest struct {
	Value string `json:"value"`
}

// PutSetting updates one of the known site settings.
func (h *AdminHandler) PutSetting(c echo.Context) error {
	key := c.Param("key")
	if !publicSettings[key] {
		return c.JSON(http.StatusNotFound, echo.Map{"error": i18n.T(middleware.Lang(c), i18n.UnknownSetting)})
	}
	var req settingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	ctx := c.Request().Context()
	if err := h.Settings.Set(ctx, key, strings.TrimSpace(req.Value)); err != nil {
		return fail(c, h.logger(), err)
	}
	h.changed(ctx, "site_settings", queue.OpUpdate, 0)
	return c.JSON(http.StatusOK, echo.Map{"key": key, "value": strings.TrimSpace(req.Value)})
}
