package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yacht-charter/internal/model"
	"github.com/iliyamo/yacht-charter/internal/pricing"
)

// YachtReader is the catalog access the yacht endpoints need.
type YachtReader interface {
	ListYachts(ctx context.Context, availableOnly bool) ([]model.Yacht, error)
	GetYacht(ctx context.Context, id uint64) (*model.Yacht, error)
	ListImages(ctx context.Context, yachtID uint64) ([]model.YachtImage, error)
	ListOptions(ctx context.Context, yachtID uint64) ([]model.YachtOption, error)
}

// ServiceReader lists the three service catalogs.
type ServiceReader interface {
	ListWaterSports(ctx context.Context) ([]model.WaterSport, error)
	ListFood(ctx context.Context) ([]model.FoodItem, error)
	ListAdditional(ctx context.Context) ([]model.AdditionalService, error)
	GetItem(ctx context.Context, kind model.ItemKind, id uint64) (model.CatalogItem, error)
}

type PromotionReader interface {
	ListPromotions(ctx context.Context) ([]model.Promotion, error)
}

type SettingsReader interface {
	All(ctx context.Context) ([]model.SiteSetting, error)
	Get(ctx context.Context, key string) (string, error)
}

// CatalogHandler serves the public, read-only catalog.
type CatalogHandler struct {
	Yachts     YachtReader
	Services   ServiceReader
	Promotions PromotionReader
	Settings   SettingsReader
	Calc       *pricing.Calculator
	Log        *slog.Logger
	Now        func() time.Time
}

func NewCatalogHandler(yachts YachtReader, services ServiceReader, promos PromotionReader, settings SettingsReader, calc *pricing.Calculator, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		Yachts:     yachts,
		Services:   services,
		Promotions: promos,
		Settings:   settings,
		Calc:       calc,
		Log:        orDiscard(log),
		Now:        time.Now,
	}
}

// pathKinds maps the :kind segment of /v1/services to a catalog kind.
var pathKinds = map[string]model.ItemKind{
	"water-sports": model.KindWaterSport,
	"food":         model.KindFood,
	"additional":   model.KindAdditionalService,
}

// publicSettings are the keys readable without authentication.
var publicSettings = map[string]bool{
	model.SettingWhatsAppNumber: true,
	model.SettingContactEmail:   true,
	model.SettingCurrency:       true,
}

// promotions loads promotions for badges.  A failure only hides badges.
func (h *CatalogHandler) promotions(ctx context.Context) []model.Promotion {
	ps, err := h.Promotions.ListPromotions(ctx)
	if err != nil {
		h.Log.Warn("promotions unavailable", slog.String("error", err.Error()))
		return nil
	}
	return ps
}

type yachtListItem struct {
	model.Yacht
	Promotion *model.Promotion `json:"promotion,omitempty"`
}

// ListYachts returns the bookable yachts with their promotion badge.
func (h *CatalogHandler) ListYachts(c echo.Context) error {
	ctx := c.Request().Context()
	ys, err := h.Yachts.ListYachts(ctx, true)
	if err != nil {
		return fail(c, h.Log, err)
	}
	promos := h.promotions(ctx)
	now := h.Now()
	out := make([]yachtListItem, 0, len(ys))
	for _, y := range ys {
		out = append(out, yachtListItem{Yacht: y, Promotion: pricing.FindApplicablePromotion(promos, y.CatalogItem(), now)})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetYacht returns one yacht with images, active options and badge.
func (h *CatalogHandler) GetYacht(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c)
	}
	ctx := c.Request().Context()
	y, err := h.Yachts.GetYacht(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	imgs, err := h.Yachts.ListImages(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	all, err := h.Yachts.ListOptions(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	opts := make([]model.YachtOption, 0, len(all))
	for _, o := range all {
		if o.IsActive {
			opts = append(opts, o)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"yacht":     y,
		"images":    imgs,
		"options":   opts,
		"promotion": pricing.FindApplicablePromotion(h.promotions(ctx), y.CatalogItem(), h.Now()),
	})
}

// QuoteYacht prices a charter: hours × hourly rate plus selected options.
func (h *CatalogHandler) QuoteYacht(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c)
	}
	hours, err := strconv.Atoi(c.QueryParam("hours"))
	if err != nil {
		return fail(c, h.Log, pricing.ErrInvalidDuration)
	}
	selected, ok := parseIDs(c.QueryParam("options"))
	if !ok {
		return badRequest(c)
	}
	ctx := c.Request().Context()
	y, err := h.Yachts.GetYacht(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	opts, err := h.Yachts.ListOptions(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	q, err := h.Calc.Quote(y.CatalogItem(), hours, selected, opts, h.promotions(ctx), h.Now())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, q)
}

type serviceListItem struct {
	Item      any              `json:"item"`
	Promotion *model.Promotion `json:"promotion,omitempty"`
}

// ListServices lists one service catalog with promotion badges.
func (h *CatalogHandler) ListServices(c echo.Context) error {
	kind, ok := pathKinds[c.Param("kind")]
	if !ok {
		return fail(c, h.Log, pricing.ErrUnknownKind)
	}
	ctx := c.Request().Context()

	type priced interface{ CatalogItem() model.CatalogItem }
	var items []priced
	switch kind {
	case model.KindWaterSport:
		ws, err := h.Services.ListWaterSports(ctx)
		if err != nil {
			return fail(c, h.Log, err)
		}
		for _, w := range ws {
			items = append(items, w)
		}
	case model.KindFood:
		fs, err := h.Services.ListFood(ctx)
		if err != nil {
			return fail(c, h.Log, err)
		}
		for _, f := range fs {
			items = append(items, f)
		}
	default:
		as, err := h.Services.ListAdditional(ctx)
		if err != nil {
			return fail(c, h.Log, err)
		}
		for _, a := range as {
			items = append(items, a)
		}
	}

	promos := h.promotions(ctx)
	now := h.Now()
	out := make([]serviceListItem, 0, len(items))
	for _, it := range items {
		out = append(out, serviceListItem{Item: it, Promotion: pricing.FindApplicablePromotion(promos, it.CatalogItem(), now)})
	}
	return c.JSON(http.StatusOK, echo.Map{"kind": kind, "items": out})
}

// QuoteService prices one service.  quantity is minutes for water sports,
// persons for food and ignored for additional services.
func (h *CatalogHandler) QuoteService(c echo.Context) error {
	kind, ok := pathKinds[c.Param("kind")]
	if !ok {
		return fail(c, h.Log, pricing.ErrUnknownKind)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c)
	}
	qty := 1
	if raw := c.QueryParam("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c)
		}
		qty = n
	}
	ctx := c.Request().Context()
	item, err := h.Services.GetItem(ctx, kind, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	q, err := h.Calc.Quote(item, qty, nil, nil, h.promotions(ctx), h.Now())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, q)
}

// ListPromotions returns the promotions active right now.
func (h *CatalogHandler) ListPromotions(c echo.Context) error {
	ps, err := h.Promotions.ListPromotions(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	active := pricing.ActivePromotions(ps, h.Now())
	if active == nil {
		active = []model.Promotion{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": active})
}

// PublicSettings returns the site settings visitors may read.
func (h *CatalogHandler) PublicSettings(c echo.Context) error {
	all, err := h.Settings.All(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make(map[string]string, len(publicSettings))
	for _, s := range all {
		if publicSettings[s.Key] {
			out[s.Key] = s.Value
		}
	}
	return c.JSON(http.StatusOK, out)
}
