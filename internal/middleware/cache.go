package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/yacht-charter/internal/config"
)

// captureWriter copies the response body while forwarding it to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size < cw.limit {
		rest := b
		if cw.limit > 0 && int64(len(b)) > cw.limit-cw.size {
			rest = b[:cw.limit-cw.size]
		}
		cw.buf.Write(rest)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdr)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	copy(out[8:], hdr)
	copy(out[8+len(hdr):], body)
	return out, nil
}

func decodePayload(bs []byte) (int, http.Header, []byte, bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status := int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	hdr := make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+hlen:], true
}

// ResponseCache stores successful GET responses in redis, tagged with the
// tables they were built from.  Invalidate drops every response of a
// table; the change feed calls it when the table is modified.
type ResponseCache struct {
	rdb     *redis.Client
	cfg     config.CacheConfig
	methods map[string]bool
	log     *slog.Logger
}

// NewResponseCache returns a cache.  With caching disabled or no redis
// client the middleware passes through and Invalidate is a no-op.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, log *slog.Logger) *ResponseCache {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "cache"
	}
	if !cfg.Enabled {
		rdb = nil
	}
	return &ResponseCache{rdb: rdb, cfg: cfg, methods: cfg.MethodSet(), log: log}
}

func (rc *ResponseCache) tagKey(table string) string {
	return rc.cfg.Prefix + ":tag:" + table
}

func (rc *ResponseCache) key(c echo.Context) string {
	r := c.Request()
	tail := strings.Join([]string{r.Method, r.URL.Path, r.URL.RawQuery, string(Lang(c))}, ":")
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", rc.cfg.Prefix, sum[:])
}

// Middleware caches the route's responses under the given table tags.
func (rc *ResponseCache) Middleware(tables ...string) echo.MiddlewareFunc {
	if rc.rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	maxBody := int64(rc.cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.methods[c.Request().Method] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := rc.key(c)

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			hdr.Del(HeaderSessionID)
			hdr.Del("Set-Cookie")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			// The request may already be gone; the entry is still worth keeping.
			bg := context.WithoutCancel(ctx)
			pipe := rc.rdb.TxPipeline()
			pipe.Set(bg, key, payload, rc.cfg.TTL)
			for _, t := range tables {
				pipe.SAdd(bg, rc.tagKey(t), key)
				pipe.Expire(bg, rc.tagKey(t), 2*rc.cfg.TTL)
			}
			if _, err := pipe.Exec(bg); err != nil {
				rc.log.Warn("cache store failed", slog.String("error", err.Error()))
			}
			return nil
		}
	}
}

// Invalidate drops every cached response tagged with table.
func (rc *ResponseCache) Invalidate(ctx context.Context, table string) error {
	if rc.rdb == nil {
		return nil
	}
	tag := rc.tagKey(table)
	keys, err := rc.rdb.SMembers(ctx, tag).Result()
	if err != nil {
		return fmt.Errorf("cache tag %s: %w", table, err)
	}
	keys = append(keys, tag)
	if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", table, err)
	}
	rc.log.Debug("cache invalidated", slog.String("table", table), slog.Int("entries", len(keys)-1))
	return nil
}
