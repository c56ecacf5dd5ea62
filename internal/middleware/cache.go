package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/service-booking/internal/config"
)

// entityHeaders describe the body itself and are the only headers kept with a
// cached response.  CORS, rate-limit and other per-request headers are left
// to the middleware that set them on the live response.
var entityHeaders = []string{
	echo.HeaderContentType,
	echo.HeaderContentEncoding,
	"Content-Language",
	echo.HeaderContentDisposition,
	"Cache-Control",
	"ETag",
	echo.HeaderLastModified,
}

// cachedResponse is what is stored per key.  Body is base64 in JSON.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// captureWriter copies up to limit bytes of the body while forwarding
// everything to the client.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.truncated {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.truncated = true
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var tail string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		tail = "route:" + c.Path()
	case "method_route":
		tail = "method:" + r.Method + ":route:" + c.Path()
	case "method_route_query":
		tail = "method:" + r.Method + ":route:" + c.Path() + ":q:" + r.URL.RawQuery
	default: // route_query
		tail = "route:" + c.Path() + ":q:" + r.URL.RawQuery
	}
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// NewRedisCache serves repeated requests for cacheable methods from Redis.
// Only complete 200 responses are stored, with their entity headers, so a
// hit carries the same body and content type as the first response.  Responses are tagged X-Cache HIT or
// MISS.  With caching disabled or no Redis client it does nothing.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(bs, &hit) == nil && hit.Status != 0 {
					h := c.Response().Header()
					restoreEntityHeaders(h, hit.Header)
					h.Set("X-Cache", "HIT")
					c.Response().WriteHeader(hit.Status)
					_, _ = c.Response().Write(hit.Body)
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated {
				return nil
			}

			header := keepEntityHeaders(c.Response().Header())
			payload, err := json.Marshal(cachedResponse{Status: cw.status, Header: header, Body: cw.buf.Bytes()})
			if err != nil {
				return nil
			}
			// the request context may already be cancelled once the body is written
			_ = rdb.Set(context.Background(), key, payload, ttl).Err()
			return nil
		}
	}
}

func keepEntityHeaders(h http.Header) http.Header {
	out := make(http.Header, len(entityHeaders))
	for _, k := range entityHeaders {
		if vals := h.Values(k); len(vals) > 0 {
			out[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
		}
	}
	return out
}

func restoreEntityHeaders(dst, saved http.Header) {
	for _, k := range entityHeaders {
		if vals := saved.Values(k); len(vals) > 0 {
			dst[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
		}
	}
}
