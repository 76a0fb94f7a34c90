package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/keei051/kara-boy/core/storage"
	"github.com/keei051/kara-boy/core/telegram/callbacks"
	"github.com/keei051/kara-boy/core/vk"

	tele "gopkg.in/telebot.v4"
)

// LinkStore is the slice of the storage API the conversation layer needs.
type LinkStore interface {
	UserLinks(userID string) []storage.LinkRecord
	AddLink(userID string, rec storage.LinkRecord) error
	DeleteLink(userID string, index int) error
	RenameLink(userID string, index int, title string) error
}

// Shortener produces a short URL plus a stats key for a valid original URL.
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) (vk.ShortLink, error)
}

// StatsProvider fetches click statistics and resolves country names.
type StatsProvider interface {
	LinkStats(ctx context.Context, statsKey string) vk.StatsResult
	BatchStats(ctx context.Context, statsKeys []string) []vk.StatsResult
	CountryNames(ctx context.Context, stats vk.StatsResult) map[string]string
}

// URLValidator checks a candidate URL before it is offered to the gateway.
type URLValidator interface {
	IsValid(ctx context.Context, rawURL string) bool
}

// Handlers holds the conversation state machine and its collaborators.
// Everything is passed in by parameter; the package keeps no globals.
type Handlers struct {
	store     LinkStore
	shortener Shortener
	stats     StatsProvider
	validator URLValidator
	sessions  *Sessions
}

// NewHandlers wires the conversation layer.
func NewHandlers(store LinkStore, shortener Shortener, stats StatsProvider, validator URLValidator, sessions *Sessions) *Handlers {
	if sessions == nil {
		sessions = NewSessions()
	}
	return &Handlers{
		store:     store,
		shortener: shortener,
		stats:     stats,
		validator: validator,
		sessions:  sessions,
	}
}

// Sessions exposes the session manager for routing decisions.
func (h *Handlers) Sessions() *Sessions { return h.sessions }

// InProgress implements the router FSM interface.
func (h *Handlers) InProgress(userID int64) bool { return h.sessions.InProgress(userID) }

func userKey(c tele.Context) string {
	if c.Sender() == nil {
		return ""
	}
	return strconv.FormatInt(c.Sender().ID, 10)
}

func (h *Handlers) send(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return c.Send(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup})
}

// edit rewrites the message the pressed button belongs to, falling back to a
// fresh message for command-originated flows.
func (h *Handlers) edit(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return c.EditOrSend(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup})
}

// Start greets the user and shows the main menu.
func (h *Handlers) Start(c tele.Context) error {
	h.sessions.Reset(c.Sender().ID)
	return h.send(c, textWelcome, h.mainMenu())
}

// Help describes what the bot can do.
func (h *Handlers) Help(c tele.Context) error {
	h.sessions.Reset(c.Sender().ID)
	return h.send(c, textHelp, h.mainMenu())
}

// Links lists the user's saved links, paginating long listings into
// several messages; only the last one carries the menu keyboard.
func (h *Handlers) Links(c tele.Context) error {
	h.sessions.Reset(c.Sender().ID)

	links := h.store.UserLinks(userKey(c))
	if len(links) == 0 {
		return h.send(c, textNoLinks, h.mainMenu())
	}

	pages := linkListPages(links)
	for i, page := range pages {
		var markup *tele.ReplyMarkup
		if i == len(pages)-1 {
			markup = h.mainMenu()
		}
		if err := h.send(c, page, markup); err != nil {
			return err
		}
	}
	return nil
}

// ListLinks is the callback twin of Links; it edits the menu message in place.
func (h *Handlers) ListLinks(c tele.Context) error {
	h.sessions.Reset(c.Sender().ID)

	links := h.store.UserLinks(userKey(c))
	if len(links) == 0 {
		return h.edit(c, textNoLinks, h.mainMenu())
	}

	pages := linkListPages(links)
	markupFor := func(i int) *tele.ReplyMarkup {
		if i == len(pages)-1 {
			return h.mainMenu()
		}
		return nil
	}
	if err := h.edit(c, pages[0], markupFor(0)); err != nil {
		return err
	}
	for i := 1; i < len(pages); i++ {
		if err := h.send(c, pages[i], markupFor(i)); err != nil {
			return err
		}
	}
	return nil
}

// AddLink starts the shorten-and-save flow.
func (h *Handlers) AddLink(c tele.Context) error {
	h.sessions.Set(c.Sender().ID, AwaitingLink{})
	return h.edit(c, textAskLink, cancelMarkup())
}

// Cancel aborts any flow in progress from any state.
func (h *Handlers) Cancel(c tele.Context) error {
	h.sessions.Reset(c.Sender().ID)
	return h.edit(c, textCancelled, h.mainMenu())
}

// Stats shows the aggregate across all links and a selection keyboard.
func (h *Handlers) Stats(c tele.Context) error {
	userID := c.Sender().ID
	h.sessions.Reset(userID)

	links := h.store.UserLinks(userKey(c))
	if len(links) == 0 {
		return h.edit(c, textNoLinks, h.mainMenu())
	}

	keys := make([]string, len(links))
	for i, rec := range links {
		keys[i] = rec.StatsKey
	}
	results := h.stats.BatchStats(context.Background(), keys)

	h.sessions.Set(userID, AwaitingLinkSelection{})
	body := statsSummaryLine(results) + "\n\n" + textPickLink
	return h.edit(c, body, linkSelectionMarkup(links))
}

// LinkStats renders statistics for one selected link with action buttons.
// A stale index (link deleted since listing) resets the session.
func (h *Handlers) LinkStats(c tele.Context) error {
	userID := c.Sender().ID

	index, err := callbacks.PayloadInt(c)
	if err != nil {
		h.sessions.Reset(userID)
		return h.edit(c, textLinkGone, h.mainMenu())
	}

	links := h.store.UserLinks(userKey(c))
	if index < 0 || index >= len(links) {
		h.sessions.Reset(userID)
		return h.edit(c, textLinkGone, h.mainMenu())
	}
	rec := links[index]

	ctx := context.Background()
	result := h.stats.LinkStats(ctx, rec.StatsKey)
	names := h.stats.CountryNames(ctx, result)

	return h.edit(c, statsText(rec, result, names), linkActionsMarkup(index))
}

// DeleteLink removes the selected link.
func (h *Handlers) DeleteLink(c tele.Context) error {
	userID := c.Sender().ID
	h.sessions.Reset(userID)

	index, err := callbacks.PayloadInt(c)
	if err != nil {
		return h.edit(c, textLinkGone, h.mainMenu())
	}

	switch err := h.store.DeleteLink(userKey(c), index); {
	case err == nil:
		return h.edit(c, textDeleted, h.mainMenu())
	case classify(err) == FailureNotFound:
		return h.edit(c, textLinkGone, h.mainMenu())
	default:
		return fmt.Errorf("%w: %w", errPersistence, err)
	}
}

// RenameLink asks for the new title of the selected link.
func (h *Handlers) RenameLink(c tele.Context) error {
	userID := c.Sender().ID

	index, err := callbacks.PayloadInt(c)
	if err != nil {
		h.sessions.Reset(userID)
		return h.edit(c, textLinkGone, h.mainMenu())
	}
	links := h.store.UserLinks(userKey(c))
	if index < 0 || index >= len(links) {
		h.sessions.Reset(userID)
		return h.edit(c, textLinkGone, h.mainMenu())
	}

	h.sessions.Set(userID, AwaitingRename{LinkIndex: index})
	return h.edit(c, textAskNewTitle, cancelMarkup())
}

// HandleText drives the state machine for free-text input while a
// conversation is in progress.
func (h *Handlers) HandleText(c tele.Context) error {
	userID := c.Sender().ID

	switch st := h.sessions.Get(userID).(type) {
	case AwaitingLink:
		return h.handleLinkInput(c, userID)
	case AwaitingTitle:
		return h.handleTitleInput(c, userID, st)
	case AwaitingRename:
		return h.handleRenameInput(c, userID, st)
	case AwaitingLinkSelection:
		// Selection happens through buttons; free text is not an event here.
		return nil
	default:
		return nil
	}
}

// Fallback replies to free text outside any conversation.
func (h *Handlers) Fallback(c tele.Context) error {
	return h.send(c, textUseMenu, h.mainMenu())
}

func (h *Handlers) handleLinkInput(c tele.Context, userID int64) error {
	rawURL := strings.TrimSpace(c.Text())

	ctx := context.Background()
	if !h.validator.IsValid(ctx, rawURL) {
		return h.send(c, textBadLink, cancelMarkup())
	}

	var progress *tele.Message
	if b := c.Bot(); b != nil {
		progress, _ = b.Send(c.Recipient(), textShortening)
	}

	short, err := h.shortener.Shorten(ctx, rawURL)

	if progress != nil {
		_ = c.Bot().Delete(progress)
	}
	if err != nil {
		// Gateway failures re-prompt in the same state with the short reason.
		return h.send(c, "❌ "+err.Error(), cancelMarkup())
	}

	h.sessions.Set(userID, AwaitingTitle{
		OriginalURL: rawURL,
		ShortURL:    short.ShortURL,
		StatsKey:    short.StatsKey,
	})
	return h.send(c, textAskTitle, cancelMarkup())
}

func (h *Handlers) handleTitleInput(c tele.Context, userID int64, st AwaitingTitle) error {
	title := storage.TruncateTitle(c.Text())
	if title == "" {
		return h.send(c, textEmptyTitle, cancelMarkup())
	}

	rec := storage.LinkRecord{
		Title:       title,
		ShortURL:    st.ShortURL,
		OriginalURL: st.OriginalURL,
		StatsKey:    st.StatsKey,
		CreatedAt:   time.Now(),
	}

	switch err := h.store.AddLink(userKey(c), rec); {
	case err == nil:
		h.sessions.Reset(userID)
		return h.send(c, savedLinkText(rec), h.mainMenu())
	case classify(err) == FailureDuplicate:
		h.sessions.Reset(userID)
		return h.send(c, textDuplicateLink, h.mainMenu())
	default:
		return fmt.Errorf("%w: %w", errPersistence, err)
	}
}

func (h *Handlers) handleRenameInput(c tele.Context, userID int64, st AwaitingRename) error {
	title := storage.TruncateTitle(c.Text())
	if title == "" {
		return h.send(c, textEmptyTitle, cancelMarkup())
	}

	switch err := h.store.RenameLink(userKey(c), st.LinkIndex, title); {
	case err == nil:
		h.sessions.Reset(userID)
		return h.send(c, textRenamed, h.mainMenu())
	case classify(err) == FailureNotFound:
		h.sessions.Reset(userID)
		return h.send(c, textLinkGone, h.mainMenu())
	default:
		return fmt.Errorf("%w: %w", errPersistence, err)
	}
}
