// Package middleware provides global bot middlewares: panic recovery,
// update logging and per-user rate limiting.
package middleware

import (
	"runtime/debug"

	"go.uber.org/zap"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("panic recovered",
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
