package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/yacht-charter/internal/config"
	"github.com/iliyamo/yacht-charter/internal/i18n"
)

// fixedWindow counts a hit and starts the window on the first one.
// Returns {count, ttl_ms}.
var fixedWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {n, ttl}
`)

// NewRateLimiter allows cfg.Limit requests per client IP and route in each
// cfg.Window.  Without redis, or when redis fails, requests pass.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	window := cfg.Window.Milliseconds()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg.Prefix, c)
			vals, err := fixedWindow.Run(c.Request().Context(), rdb, []string{key}, window).Int64Slice()
			if err != nil || len(vals) != 2 {
				log.Warn("rate limiter unavailable", slog.String("key", key), slog.Any("error", err))
				return next(c)
			}
			count, ttl := vals[0], vals[1]

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				secs := (time.Duration(ttl)*time.Millisecond + time.Second - 1) / time.Second
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.FormatInt(int64(secs), 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       i18n.T(Lang(c), i18n.TooManyRequests),
					"retry_after": int64(secs),
				})
			}
			return next(c)
		}
	}
}

func rateKey(prefix string, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{prefix, ip, c.Request().Method + " " + c.Path()}, ":")
}
