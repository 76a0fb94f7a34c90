package bot

import (
	"errors"

	"go.uber.org/zap"

	"github.com/keei051/kara-boy/core/logger"
	"github.com/keei051/kara-boy/core/storage"
	"github.com/keei051/kara-boy/core/telegram/middleware"
	"github.com/keei051/kara-boy/core/vk"

	tele "gopkg.in/telebot.v4"
)

// FailureKind classifies an error escaping a handler.
type FailureKind int

const (
	// FailureUnclassified covers everything the other kinds do not.
	FailureUnclassified FailureKind = iota
	// FailureValidation marks a malformed or unreachable URL.
	FailureValidation
	// FailureGateway marks a rejected or unreachable shortening API.
	FailureGateway
	// FailureDuplicate marks an already saved original URL.
	FailureDuplicate
	// FailureNotFound marks a stale link index.
	FailureNotFound
	// FailurePersistence marks a failed durable-store write.
	FailurePersistence
)

func (k FailureKind) String() string {
	switch k {
	case FailureValidation:
		return "validation"
	case FailureGateway:
		return "gateway"
	case FailureDuplicate:
		return "duplicate"
	case FailureNotFound:
		return "not_found"
	case FailurePersistence:
		return "persistence"
	default:
		return "unclassified"
	}
}

// classify maps an error to its failure kind.
func classify(err error) FailureKind {
	switch {
	case errors.Is(err, storage.ErrDuplicateLink):
		return FailureDuplicate
	case errors.Is(err, storage.ErrLinkNotFound):
		return FailureNotFound
	}
	var gw *vk.GatewayError
	if errors.As(err, &gw) {
		return FailureGateway
	}
	if errors.Is(err, errPersistence) {
		return FailurePersistence
	}
	return FailureUnclassified
}

// errPersistence tags wrapped store-write failures for classification.
var errPersistence = errors.New("persistence failure")

// intercept is the single safety net every handler runs through. It resets
// the session and renders the generic apology; no other code path may do so.
func (h *Handlers) intercept(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}

		kind := classify(err)
		fields := []zap.Field{
			zap.String("kind", kind.String()),
			zap.String("rid", middleware.RID(c)),
			zap.String("err", logger.Truncate(err.Error(), 256)),
		}
		if user := c.Sender(); user != nil {
			fields = append(fields, zap.Int64("user_id", user.ID))
			h.sessions.Reset(user.ID)
		}

		if kind == FailurePersistence {
			// Data integrity is at stake: keep the full detail in the log.
			zap.L().Error("link store write failed", append(fields, zap.Error(err))...)
		} else {
			zap.L().Error("handler failure", fields...)
		}

		return h.send(c, textGenericFailure, h.mainMenu())
	}
}
