package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinehall/cinema-booking/internal/config"
)

// browsePrefix namespaces browse-cache entries in Redis.
const browsePrefix = "cinehall:browse:"

// cachedPage is the stored form of one cached response.
type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// browseKey derives the cache key from the concrete request path and
// raw query, never the route pattern, so two requests that differ in
// any path segment or parameter can never share an entry.
func browseKey(path, rawQuery string) string {
	sum := sha1.Sum([]byte(path + "?" + rawQuery))
	return fmt.Sprintf("%s%x", browsePrefix, sum)
}

// NewBrowseCache caches successful GET responses of the public catalog
// endpoints (show program, seat maps, concession menu) in Redis.  It
// must only wrap routes that serve the same body to every caller:
// authenticated routes and per-reservation lookups stay uncached.
// Without a Redis client it is a pass-through.
func NewBrowseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}
			ctx := req.Context()
			key := browseKey(req.URL.Path, req.URL.RawQuery)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var page cachedPage
				if json.Unmarshal(raw, &page) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(page.Status, page.ContentType, page.Body)
				}
			}

			rec := &pageRecorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}

			// Only complete 200s are worth keeping.
			if rec.status != http.StatusOK {
				return nil
			}
			if cfg.MaxBodyBytes > 0 && int64(rec.body.Len()) > cfg.MaxBodyBytes {
				return nil
			}
			page := cachedPage{
				Status:      rec.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.body.Bytes(),
			}
			if raw, err := json.Marshal(page); err == nil {
				_ = rdb.Set(ctx, key, raw, cfg.TTL).Err()
			}
			return nil
		}
	}
}

// pageRecorder copies the response body while writing it through to the
// client.
type pageRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *pageRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *pageRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
