package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yacht-charter/internal/booking"
	"github.com/iliyamo/yacht-charter/internal/cart"
	"github.com/iliyamo/yacht-charter/internal/i18n"
	"github.com/iliyamo/yacht-charter/internal/middleware"
	"github.com/iliyamo/yacht-charter/internal/pricing"
	"github.com/iliyamo/yacht-charter/internal/repository"
	"github.com/iliyamo/yacht-charter/internal/whatsapp"
)

// fail writes the localized error response for err.  Unexpected errors
// are logged; users only ever see a message from the i18n table.
func fail(c echo.Context, log *slog.Logger, err error) error {
	lang := middleware.Lang(c)
	msg := func(status int, key i18n.Key) error {
		return c.JSON(status, echo.Map{"error": i18n.T(lang, key)})
	}

	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  i18n.T(lang, i18n.InvalidRequest),
			"fields": verr.Localize(lang),
		})
	case errors.Is(err, pricing.ErrInvalidBucket):
		return msg(http.StatusUnprocessableEntity, i18n.DurationInvalid)
	case errors.Is(err, pricing.ErrInvalidDuration):
		return msg(http.StatusUnprocessableEntity, i18n.HoursRange)
	case errors.Is(err, pricing.ErrInvalidQuantity):
		return msg(http.StatusUnprocessableEntity, i18n.QuantityInvalid)
	case errors.Is(err, errCartEmpty):
		return msg(http.StatusUnprocessableEntity, i18n.CartEmpty)
	case errors.Is(err, cart.ErrInvalidItem):
		return msg(http.StatusUnprocessableEntity, i18n.InvalidRequest)
	case errors.Is(err, repository.ErrYachtNotFound),
		errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrCartItemMissing),
		errors.Is(err, pricing.ErrUnknownKind):
		return msg(http.StatusNotFound, i18n.NotFound)
	case errors.Is(err, repository.ErrSettingNotFound):
		return msg(http.StatusNotFound, i18n.UnknownSetting)
	case errors.Is(err, booking.ErrYachtUnavailable):
		return msg(http.StatusConflict, i18n.YachtUnavailable)
	case errors.Is(err, errItemUnavailable):
		return msg(http.StatusConflict, i18n.ItemUnavailable)
	case errors.Is(err, repository.ErrConflict):
		return msg(http.StatusConflict, i18n.InvalidRequest)
	case errors.Is(err, booking.ErrInvalidTransition):
		return msg(http.StatusConflict, i18n.InvalidTransition)
	case errors.Is(err, whatsapp.ErrNoNumber):
		return msg(http.StatusServiceUnavailable, i18n.WhatsAppUnset)
	case repository.IsTransient(err), errors.Is(err, context.DeadlineExceeded):
		log.Warn("transient backend failure", slog.String("path", c.Path()), slog.String("error", err.Error()))
		return msg(http.StatusServiceUnavailable, i18n.TryAgain)
	}

	log.Error("request failed", slog.String("path", c.Path()), slog.String("error", err.Error()))
	var partial *booking.PartialBookingError
	if errors.As(err, &partial) {
		return msg(http.StatusInternalServerError, i18n.BookingFailed)
	}
	return msg(http.StatusInternalServerError, i18n.Generic)
}

var (
	errItemUnavailable = errors.New("catalog item not available")
	errCartEmpty       = errors.New("cart is empty")
)

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": i18n.T(middleware.Lang(c), i18n.InvalidRequest)})
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// parseIDs reads a comma separated id list such as "1,2,3".
func parseIDs(raw string) ([]uint64, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
