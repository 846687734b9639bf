package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/yacht-charter/internal/config"
)

const secret = "test-secret"

func token(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func serve(e *echo.Echo, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error { return c.String(http.StatusOK, UserID(c)) }, JWTAuth(secret))
	exp := time.Now().Add(time.Hour).Unix()

	rec := serve(e, http.MethodGet, "/me", map[string]string{
		"Authorization": "Bearer " + token(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-7", "exp": exp}),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", rec.Body.String())

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer abc.def.ghi",
		"expired":        "Bearer " + token(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no expiry":      "Bearer " + token(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"}),
		"no subject":     "Bearer " + token(t, jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp}),
		"wrong alg":      "Bearer " + token(t, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "u", "exp": exp}),
	}
	for name, auth := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, "/me", map[string]string{"Authorization": auth})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

type roles map[string]bool

func (r roles) HasRole(_ context.Context, uid, role string) (bool, error) {
	if uid == "broken" {
		return false, errors.New("db down")
	}
	return r[uid+":"+role], nil
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	setUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if u := c.Request().Header.Get("X-User"); u != "" {
				c.Set(CtxUserID, u)
			}
			return next(c)
		}
	}
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		setUser, RequireRole(roles{"a1:admin": true}, "admin", nil))

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/admin", map[string]string{"X-User": "a1"}).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/admin", map[string]string{"X-User": "u2"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/admin", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(e, http.MethodGet, "/admin", map[string]string{"X-User": "broken"}).Code)
}

func TestSession(t *testing.T) {
	e := echo.New()
	e.Use(Session(time.Hour))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, SessionID(c)) })

	rec := serve(e, http.MethodGet, "/", nil)
	issued := rec.Body.String()
	_, err := uuid.Parse(issued)
	require.NoError(t, err)
	assert.Equal(t, issued, rec.Header().Get(HeaderSessionID))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "sid="+issued)

	rec = serve(e, http.MethodGet, "/", map[string]string{HeaderSessionID: issued})
	assert.Equal(t, issued, rec.Body.String())

	rec = serve(e, http.MethodGet, "/", map[string]string{"Cookie": "sid=" + issued})
	assert.Equal(t, issued, rec.Body.String())

	rec = serve(e, http.MethodGet, "/", map[string]string{HeaderSessionID: "../../etc"})
	assert.NotEqual(t, "../../etc", rec.Body.String())
}

func TestLanguage(t *testing.T) {
	e := echo.New()
	e.Use(Language())
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, string(Lang(c))) })

	assert.Equal(t, "en", serve(e, http.MethodGet, "/", nil).Body.String())
	assert.Equal(t, "ar", serve(e, http.MethodGet, "/?lang=ar", nil).Body.String())
	rec := serve(e, http.MethodGet, "/", map[string]string{"Accept-Language": "ar-AE,ar;q=0.9"})
	assert.Equal(t, "ar", rec.Body.String())
	assert.Equal(t, "ar", rec.Header().Get("Content-Language"))
}

func TestRateLimiter(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Limit: 2, Window: time.Minute, Prefix: "rl"}
	e := echo.New()
	e.POST("/v1/bookings", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, NewRateLimiter(cfg, rdb, nil))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/v1/bookings", nil).Code)
	}
	rec := serve(e, http.MethodPost, "/v1/bookings", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/v1/bookings", nil).Code)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl"}
	e := echo.New()
	e.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewRateLimiter(cfg, rdb, nil))
	mr.Close()
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/x", nil).Code)
	}
}

func TestResponseCache(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: []string{"GET"}, TTL: time.Minute, Prefix: "cache"}, rdb, nil)

	calls := 0
	e := echo.New()
	e.GET("/v1/yachts", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"n": calls})
	}, rc.Middleware("yachts", "promotions"))

	first := serve(e, http.MethodGet, "/v1/yachts", nil)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, http.MethodGet, "/v1/yachts", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, calls)

	// another language is another entry
	assert.Equal(t, "MISS", serve(e, http.MethodGet, "/v1/yachts?lang=ar", nil).Header().Get("X-Cache"))

	require.NoError(t, rc.Invalidate(context.Background(), "promotions"))
	third := serve(e, http.MethodGet, "/v1/yachts", nil)
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 3, calls)

	require.NoError(t, rc.Invalidate(context.Background(), "unknown"))
}

func TestResponseCacheKeysOnPathValues(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: []string{"GET"}, TTL: time.Minute, Prefix: "cache"}, rdb, nil)

	e := echo.New()
	e.GET("/v1/yachts/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "yacht "+c.Param("id"))
	}, rc.Middleware("yachts"))

	first := serve(e, http.MethodGet, "/v1/yachts/1", nil)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "yacht 1", first.Body.String())

	second := serve(e, http.MethodGet, "/v1/yachts/2", nil)
	assert.Equal(t, "MISS", second.Header().Get("X-Cache"))
	assert.Equal(t, "yacht 2", second.Body.String())

	again := serve(e, http.MethodGet, "/v1/yachts/1", nil)
	assert.Equal(t, "HIT", again.Header().Get("X-Cache"))
	assert.Equal(t, "yacht 1", again.Body.String())
}

func TestResponseCacheSkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: []string{"GET"}}, rdb, nil)
	calls := 0
	e := echo.New()
	e.GET("/missing", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nope"})
	}, rc.Middleware("yachts"))

	serve(e, http.MethodGet, "/missing", nil)
	serve(e, http.MethodGet, "/missing", nil)
	assert.Equal(t, 2, calls)
}

func TestResponseCacheDisabled(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: false}, nil, nil)
	calls := 0
	e := echo.New()
	e.GET("/", func(c echo.Context) error { calls++; return c.NoContent(http.StatusOK) }, rc.Middleware("yachts"))
	serve(e, http.MethodGet, "/", nil)
	serve(e, http.MethodGet, "/", nil)
	assert.Equal(t, 2, calls)
	assert.NoError(t, rc.Invalidate(context.Background(), "yachts"))
}
