// Package router binds incoming updates to registry handlers: free text goes
// to the conversation state machine first, then to command lookup, then to the
// fallback; callbacks are dispatched by their parsed key.
package router

import (
	"strings"
	"time"

	"go.uber.org/zap"

	tg "github.com/keei051/kara-boy/core/telegram"
	"github.com/keei051/kara-boy/core/telegram/callbacks"
	"github.com/keei051/kara-boy/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for a conversation state machine.
type FSM interface {
	InProgress(userID int64) bool
	HandleText(c tele.Context) error
}

// TextRoutes builds the handler for free-text updates.
func TextRoutes(fsm FSM, reg *tg.Registry) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if fsm != nil && c.Sender() != nil && fsm.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", start, func() error {
				return fsm.HandleText(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		logHandlerSummary(c, "unknown_text", start, nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}

// CallbackRoute returns a handler that routes callbacks through the registry.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + normalizeHandlerName(key)

		_ = c.Respond()

		cbHandler, ok := reg.GetCallback(key)
		if !ok || cbHandler == nil {
			return handleWithSummary(c, name, start, func() error {
				if fallback := reg.CallbackNotFound(); fallback != nil {
					return fallback(c)
				}
				return nil
			})
		}

		return handleWithSummary(c, name, start, func() error {
			return cbHandler(c)
		})
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		h := def.Handler
		wrapped := func(c tele.Context) error {
			start := time.Now()
			return handleWithSummary(c, name, start, func() error {
				return h(c)
			})
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(wrapped)),
		})
	}

	zap.L().Info("bot wiring complete",
		zap.Int("commands", len(reg.Commands())),
		zap.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}

func handleWithSummary(c tele.Context, handlerName string, start time.Time, fn func() error) error {
	err := fn()
	logHandlerSummary(c, handlerName, start, err)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("handler", handlerName),
		zap.String("rid", middleware.RID(c)),
		zap.Duration("duration", time.Since(start)),
	}
	if user := c.Sender(); user != nil {
		fields = append(fields, zap.Int64("user_id", user.ID))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
		zap.L().Error("handler failed", fields...)
		return
	}
	zap.L().Info("handler handled", fields...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}
