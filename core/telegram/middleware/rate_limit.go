package middleware

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user, backed by a per-user token bucket.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		limiters   = make(map[int64]*rate.Limiter)
		limitersMu sync.Mutex
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}

			// Determine update kind and apply configured exclusions
			upd := c.Update()
			kind := "other"
			switch {
			case upd.Callback != nil:
				kind = "callback"
			case upd.Message != nil:
				kind = "message"
			}
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			limitersMu.Lock()
			limiter, ok := limiters[user.ID]
			if !ok {
				limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
				limiters[user.ID] = limiter
			}
			limitersMu.Unlock()

			if !limiter.Allow() {
				zap.L().Warn("rate limited",
					zap.Int64("user_id", user.ID),
					zap.String("kind", kind),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
