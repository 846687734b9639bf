package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/yacht-charter/internal/i18n"
	"github.com/iliyamo/yacht-charter/internal/middleware"
	"github.com/iliyamo/yacht-charter/internal/pricing"
)

func catalogServer(cat *fakeCatalog) *echo.Echo {
	h := NewCatalogHandler(cat, cat, cat, cat, pricing.NewCalculator(nil), nil)
	h.Now = func() time.Time { return testNow }
	e := echo.New()
	e.Use(middleware.Language())
	e.GET("/v1/yachts", h.ListYachts)
	e.GET("/v1/yachts/:id", h.GetYacht)
	e.GET("/v1/yachts/:id/quote", h.QuoteYacht)
	e.GET("/v1/services/:kind", h.ListServices)
	e.GET("/v1/services/:kind/:id/quote", h.QuoteService)
	e.GET("/v1/promotions", h.ListPromotions)
	e.GET("/v1/settings", h.PublicSettings)
	return e
}

func TestListYachtsOnlyAvailableWithBadge(t *testing.T) {
	e := catalogServer(newFakeCatalog())
	rec := do(e, http.MethodGet, "/v1/yachts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	items := decode(t, rec)["items"].([]any)
	require.Len(t, items, 1)
	y := items[0].(map[string]any)
	assert.Equal(t, "Azimut 60", y["name"])
	assert.Equal(t, float64(1), y["promotion"].(map[string]any)["id"])
}

func TestGetYacht(t *testing.T) {
	e := catalogServer(newFakeCatalog())
	rec := do(e, http.MethodGet, "/v1/yachts/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["images"], 1)
	opts := body["options"].([]any)
	require.Len(t, opts, 1, "inactive options are hidden")
	assert.Equal(t, "Jet Ski", opts[0].(map[string]any)["name"])

	rec = do(e, http.MethodGet, "/v1/yachts/99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, i18n.T(i18n.EN, i18n.NotFound), decode(t, rec)["error"])

	rec = do(e, http.MethodGet, "/v1/yachts/99?lang=ar", "", nil)
	assert.Equal(t, i18n.T(i18n.AR, i18n.NotFound), decode(t, rec)["error"])

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/yachts/abc", "", nil).Code)
}

func TestQuoteYacht(t *testing.T) {
	e := catalogServer(newFakeCatalog())

	rec := do(e, http.MethodGet, "/v1/yachts/1/quote?hours=3&options=11,12", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode(t, rec)
	assert.Equal(t, float64(150000), q["unit_cents"])
	assert.Equal(t, float64(20000), q["options_cents"], "inactive option counts zero")
	assert.Equal(t, float64(170000), q["total_cents"])
	assert.Equal(t, float64(153000), q["display_cents"])

	for _, target := range []string{"/v1/yachts/1/quote?hours=0", "/v1/yachts/1/quote?hours=73", "/v1/yachts/1/quote"} {
		rec = do(e, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
		assert.Equal(t, i18n.T(i18n.EN, i18n.HoursRange), decode(t, rec)["error"])
	}

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/yachts/1/quote?hours=2&options=a", "", nil).Code)
}

func TestListServices(t *testing.T) {
	e := catalogServer(newFakeCatalog())
	rec := do(e, http.MethodGet, "/v1/services/additional", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "additional_service", body["kind"])
	assert.Len(t, body["items"], 2)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/services/yachts", "", nil).Code)
}

func TestQuoteService(t *testing.T) {
	e := catalogServer(newFakeCatalog())
	cases := []struct {
		target string
		status int
		total  float64
	}{
		{"/v1/services/water-sports/5/quote?quantity=30", http.StatusOK, 15000},
		{"/v1/services/water-sports/5/quote?quantity=60", http.StatusOK, 25000},
		{"/v1/services/water-sports/5/quote?quantity=45", http.StatusUnprocessableEntity, 0},
		{"/v1/services/food/6/quote?quantity=3", http.StatusOK, 24000},
		{"/v1/services/food/6/quote?quantity=0", http.StatusUnprocessableEntity, 0},
		{"/v1/services/additional/7/quote?quantity=9", http.StatusOK, 40000},
		{"/v1/services/additional/70/quote", http.StatusNotFound, 0},
	}
	for _, tc := range cases {
		rec := do(e, http.MethodGet, tc.target, "", nil)
		require.Equal(t, tc.status, rec.Code, tc.target)
		if tc.status == http.StatusOK {
			assert.Equal(t, tc.total, decode(t, rec)["total_cents"], tc.target)
		}
	}

	rec := do(e, http.MethodGet, "/v1/services/water-sports/5/quote?quantity=45", "", nil)
	assert.Equal(t, i18n.T(i18n.EN, i18n.DurationInvalid), decode(t, rec)["error"])
}

func TestListPromotionsOnlyActive(t *testing.T) {
	e := catalogServer(newFakeCatalog())
	rec := do(e, http.MethodGet, "/v1/promotions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Summer", items[0].(map[string]any)["title"])
}

func TestPublicSettingsHidesInternalKeys(t *testing.T) {
	e := catalogServer(newFakeCatalog())
	body := decode(t, do(e, http.MethodGet, "/v1/settings", "", nil))
	assert.Equal(t, "+971 50 123 4567", body["whatsapp_number"])
	assert.NotContains(t, body, "internal_note")
}
