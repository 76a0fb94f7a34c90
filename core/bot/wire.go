package bot

import (
	tg "github.com/keei051/kara-boy/core/telegram"
	"github.com/keei051/kara-boy/core/telegram/commands"
	"github.com/keei051/kara-boy/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// Register binds all commands, callbacks and fallbacks to the registry.
// Every handler passes through the failure interceptor.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.intercept(h.Start),
		Description: "Main menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.intercept(h.Help),
		Description: "What this bot can do",
	})
	reg.RegisterCommand("/links", commands.Command{
		Handler:     h.intercept(h.Links),
		Description: "List saved links",
	})

	_ = reg.RegisterCallback(cbKeyAddLink, h.intercept(h.AddLink))
	_ = reg.RegisterCallback(cbKeyStats, h.intercept(h.Stats))
	_ = reg.RegisterCallback(cbKeyListLinks, h.intercept(h.ListLinks))
	_ = reg.RegisterCallback(cbKeyCancel, h.intercept(h.Cancel))
	_ = reg.RegisterCallback(cbKeyLinkStats, h.intercept(h.LinkStats))
	_ = reg.RegisterCallback(cbKeyDeleteLink, h.intercept(h.DeleteLink))
	_ = reg.RegisterCallback(cbKeyRenameLink, h.intercept(h.RenameLink))

	reg.SetTextFallback(h.intercept(h.Fallback))
}

// Routes builds the full route set: commands, the FSM-first text route and
// the callback dispatcher.
func (h *Handlers) Routes(reg *tg.Registry) []tg.Route {
	fsm := &fsmAdapter{h: h}
	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(fsm, reg)...)
	routes = append(routes, router.CallbackRoute(reg))
	return routes
}

// fsmAdapter exposes the interceptor-wrapped text handler to the router.
type fsmAdapter struct {
	h *Handlers
}

func (a *fsmAdapter) InProgress(userID int64) bool { return a.h.InProgress(userID) }

func (a *fsmAdapter) HandleText(c tele.Context) error {
	return a.h.intercept(a.h.HandleText)(c)
}
