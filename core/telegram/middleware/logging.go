package middleware

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keei051/kara-boy/core/logger"
	"github.com/keei051/kara-boy/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// ridKey stores the per-update request id in the telebot context.
const ridKey = "rid"

// RID returns the request id assigned to this update, if any.
func RID(c tele.Context) string {
	rid, _ := c.Get(ridKey).(string)
	return rid
}

// LoggerMiddleware assigns a request id to each update and logs its receipt.
// Payload text is truncated; tokens and credentials never reach the log.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		rid := uuid.NewString()
		c.Set(ridKey, rid)

		upd := c.Update()
		fields := []zap.Field{
			zap.String("rid", rid),
			zap.Int("update_id", upd.ID),
		}
		if user := c.Sender(); user != nil {
			fields = append(fields, zap.Int64("user_id", user.ID))
		}
		if chat := c.Chat(); chat != nil {
			fields = append(fields, zap.Int64("chat_id", chat.ID))
		}
		switch {
		case upd.Callback != nil:
			key, payload := callbacks.ParseCallbackData(upd.Callback)
			fields = append(fields, zap.String("cb_key", key))
			if payload != "" {
				fields = append(fields, zap.String("payload", logger.Truncate(payload, 64)))
			}
		case upd.Message != nil:
			fields = append(fields, zap.String("text", logger.Truncate(c.Text(), 128)))
		}
		zap.L().Debug("update received", fields...)

		return next(c)
	}
}
