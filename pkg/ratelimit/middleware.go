package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Middleware returns an echo middleware that admission-checks every request
// against the shared limiter under the given policy. Entries are keyed by
// scope and client identity, so stacked policies on one route never share a
// window. Denied requests get a 429 with a Retry-After hint.
func Middleware(scope string, cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			result := Check(scope+":"+ClientIdentifier(c.Request()), cfg)

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				h.Set("Retry-After", strconv.FormatInt(int64(result.RetryAfter.Seconds())+1, 10))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":          "rate limit exceeded",
					"retry_after_ms": result.RetryAfter.Milliseconds(),
				})
			}

			return next(c)
		}
	}
}
