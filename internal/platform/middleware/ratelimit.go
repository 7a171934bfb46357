package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimit allows up to perMinute requests per client IP within a fixed
// one-minute window. Meant for the narrative route, where each request costs
// a generative-model round trip.
func RateLimit(perMinute int) echo.MiddlewareFunc {
	limiter := &windowLimiter{
		limit:   perMinute,
		windows: make(map[string]*window),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			remaining, ok := limiter.allow(c.RealIP(), time.Now())
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				c.Response().Header().Set("Retry-After", "60")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

type window struct {
	start time.Time
	count int
}

type windowLimiter struct {
	mu      sync.Mutex
	limit   int
	windows map[string]*window
}

func (l *windowLimiter) allow(key string, now time.Time) (remaining int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || now.Sub(w.start) >= time.Minute {
		w = &window{start: now}
		l.windows[key] = w
	}
	if w.count >= l.limit {
		return 0, false
	}
	w.count++
	return l.limit - w.count, true
}
