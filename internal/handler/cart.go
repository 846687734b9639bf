package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yacht-charter/internal/cart"
	"github.com/iliyamo/yacht-charter/internal/i18n"
	"github.com/iliyamo/yacht-charter/internal/middleware"
	"github.com/iliyamo/yacht-charter/internal/model"
	"github.com/iliyamo/yacht-charter/internal/pricing"
	"github.com/iliyamo/yacht-charter/internal/queue"
	"github.com/iliyamo/yacht-charter/internal/whatsapp"
)

// ServiceCartStore persists the services cart of a session.
type ServiceCartStore interface {
	List(ctx context.Context, sessionID string) ([]model.ServiceCartItem, error)
	Put(ctx context.Context, it model.ServiceCartItem) error
	Remove(ctx context.Context, sessionID string, id uint64) error
	Clear(ctx context.Context, sessionID string) error
}

// ChangePublisher announces writes on the change feed.
type ChangePublisher interface {
	PublishChange(ctx context.Context, table, op string, rowID uint64) error
}

// CartHandler serves the shopping list of yachts and the services cart.
// Both are keyed by the anonymous session id.
type CartHandler struct {
	Lists       cart.Stores
	Yachts      YachtReader
	Services    ServiceReader
	ServiceCart ServiceCartStore
	Settings    SettingsReader
	Changes     ChangePublisher
	Calc        *pricing.Calculator
	Currency    string
	Log         *slog.Logger
}

func (h *CartHandler) list(c echo.Context) *cart.ShoppingList {
	return cart.New(h.Lists.For(middleware.SessionID(c)))
}

func (h *CartHandler) logger() *slog.Logger { return orDiscard(h.Log) }

// changed publishes a change event; the feed is best effort.
func (h *CartHandler) changed(ctx context.Context, table, op string, id uint64) {
	if h.Changes == nil {
		return
	}
	if err := h.Changes.PublishChange(ctx, table, op, id); err != nil {
		h.logger().Warn("change not published", slog.String("table", table), slog.String("error", err.Error()))
	}
}

// GetCart returns the session's yachts of interest.
func (h *CartHandler) GetCart(c echo.Context) error {
	items, err := h.list(c).Items(c.Request().Context())
	if err != nil {
		return fail(c, h.logger(), err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type addCartRequest struct {
	YachtID   uint64 `json:"yacht_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// AddToCart puts a yacht on the list, or updates its dates.
func (h *CartHandler) AddToCart(c echo.Context) error {
	var req addCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if req.YachtID == 0 {
		return fail(c, h.logger(), cart.ErrInvalidItem)
	}
	ctx := c.Request().Context()
	if _, err := h.Yachts.GetYacht(ctx, req.YachtID); err != nil {
		return fail(c, h.logger(), err)
	}
	items, err := h.list(c).Add(ctx, cart.Item{YachtID: req.YachtID, StartDate: req.StartDate, EndDate: req.EndDate})
	if err != nil {
		return fail(c, h.logger(), err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// RemoveFromCart drops one yacht from the list.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	id, ok := parseID(c, "yacht_id")
	if !ok {
		return badRequest(c)
	}
	items, err := h.list(c).Remove(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ClearCart empties the list.
func (h *CartHandler) ClearCart(c echo.Context) error {
	if err := h.list(c).Clear(c.Request().Context()); err != nil {
		return fail(c, h.logger(), err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CartWhatsApp builds one message listing every yacht of interest.
func (h *CartHandler) CartWhatsApp(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.list(c).Items(ctx)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	if len(items) == 0 {
		return fail(c, h.logger(), errCartEmpty)
	}
	lang := middleware.Lang(c)
	entries := make([]whatsapp.ListEntry, 0, len(items))
	for _, it := range items {
		y, err := h.Yachts.GetYacht(ctx, it.YachtID)
		if err != nil {
			// removed from the catalog since it was added
			h.logger().Warn("cart yacht missing", slog.Uint64("yacht_id", it.YachtID), slog.String("error", err.Error()))
			continue
		}
		name := y.Name
		if lang == i18n.AR && y.NameAR != "" {
			name = y.NameAR
		}
		entries = append(entries, whatsapp.ListEntry{YachtName: name, StartDate: it.StartDate, EndDate: it.EndDate})
	}
	if len(entries) == 0 {
		return fail(c, h.logger(), errCartEmpty)
	}
	number, err := whatsappNumber(ctx, h.Settings)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	return respondLink(c, h.logger(), number, whatsapp.ComposeShoppingList(entries, lang))
}

// serviceLine is a priced line of the services cart.
type serviceLine struct {
	model.ServiceCartItem
	Name      string `json:"name"`
	UnitCents int64  `json:"unit_cents"`
	Price     string `json:"price"`
}

// pricedServices prices every line of the session's services cart.
// Lines whose item left the catalog are skipped.
func (h *CartHandler) pricedServices(ctx context.Context, sessionID string) ([]serviceLine, int64, error) {
	rows, err := h.ServiceCart.List(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	lines := make([]serviceLine, 0, len(rows))
	var total int64
	for _, r := range rows {
		item, err := h.Services.GetItem(ctx, r.ItemKind, r.ItemID)
		if err != nil {
			h.logger().Warn("service cart item skipped",
				slog.String("kind", string(r.ItemKind)), slog.Uint64("item_id", r.ItemID), slog.String("error", err.Error()))
			continue
		}
		unit, err := h.Calc.UnitPrice(item, r.Quantity)
		if err != nil {
			h.logger().Warn("service cart line not priceable", slog.Uint64("line_id", r.ID), slog.String("error", err.Error()))
			continue
		}
		total += unit
		lines = append(lines, serviceLine{ServiceCartItem: r, Name: item.Name, UnitCents: unit, Price: pricing.Format(unit, h.Currency)})
	}
	return lines, total, nil
}

// GetServiceCart returns every line priced by the engine and the total.
func (h *CartHandler) GetServiceCart(c echo.Context) error {
	lines, total, err := h.pricedServices(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return fail(c, h.logger(), err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":       lines,
		"total_cents": total,
		"total":       pricing.Format(total, h.Currency),
	})
}

// ServiceCartWhatsApp hands the priced services cart over to WhatsApp.
func (h *CartHandler) ServiceCartWhatsApp(c echo.Context) error {
	ctx := c.Request().Context()
	lines, total, err := h.pricedServices(ctx, middleware.SessionID(c))
	if err != nil {
		return fail(c, h.logger(), err)
	}
	if len(lines) == 0 {
		return fail(c, h.logger(), errCartEmpty)
	}
	lang := middleware.Lang(c)
	extras := make([]whatsapp.Line, 0, len(lines))
	for _, l := range lines {
		extras = append(extras, whatsapp.Line{
			Name:       l.Name,
			Detail:     whatsapp.ServiceDetail(l.ItemKind, l.Quantity, lang),
			PriceCents: l.UnitCents,
		})
	}
	number, err := whatsappNumber(ctx, h.Settings)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	return respondLink(c, h.logger(), number, whatsapp.ComposeServices(extras, total, h.Currency, lang))
}

type putServiceRequest struct {
	ItemKind model.ItemKind `json:"item_kind"`
	ItemID   uint64         `json:"item_id"`
	Quantity int            `json:"quantity"`
}

// AddService adds a service line or replaces its quantity.  The quantity
// is checked by pricing the line before it is stored.
func (h *CartHandler) AddService(c echo.Context) error {
	var req putServiceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if !req.ItemKind.Valid() || req.ItemKind == model.KindYacht || req.ItemID == 0 {
		return badRequest(c)
	}
	if req.ItemKind == model.KindAdditionalService && req.Quantity == 0 {
		req.Quantity = 1
	}
	ctx := c.Request().Context()
	item, err := h.Services.GetItem(ctx, req.ItemKind, req.ItemID)
	if err != nil {
		return fail(c, h.logger(), err)
	}
	if !item.Available {
		return fail(c, h.logger(), fmt.Errorf("%w: %s %d", errItemUnavailable, req.ItemKind, req.ItemID))
	}
	if _, err := h.Calc.UnitPrice(item, req.Quantity); err != nil {
		return fail(c, h.logger(), err)
	}
	err = h.ServiceCart.Put(ctx, model.ServiceCartItem{
		SessionID: middleware.SessionID(c),
		ItemKind:  req.ItemKind,
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return fail(c, h.logger(), err)
	}
	h.changed(ctx, "service_cart_items", queue.OpInsert, 0)
	return h.GetServiceCart(c)
}

// RemoveService deletes one line of the services cart.
func (h *CartHandler) RemoveService(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c)
	}
	ctx := c.Request().Context()
	if err := h.ServiceCart.Remove(ctx, middleware.SessionID(c), id); err != nil {
		return fail(c, h.logger(), err)
	}
	h.changed(ctx, "service_cart_items", queue.OpDelete, id)
	return c.NoContent(http.StatusNoContent)
}

// ClearServices empties the services cart.
func (h *CartHandler) ClearServices(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.ServiceCart.Clear(ctx, middleware.SessionID(c)); err != nil {
		return fail(c, h.logger(), err)
	}
	h.changed(ctx, "service_cart_items", queue.OpDelete, 0)
	return c.NoContent(http.StatusNoContent)
}
