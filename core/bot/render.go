package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/keei051/kara-boy/core/storage"
	"github.com/keei051/kara-boy/core/telegram/format"
	"github.com/keei051/kara-boy/core/telegram/keyboard"
	"github.com/keei051/kara-boy/core/vk"

	tele "gopkg.in/telebot.v4"
)

// Callback keys wired into the registry. Parameterized actions carry the link
// index as payload.
const (
	cbKeyAddLink    = "add_link"
	cbKeyStats      = "stats"
	cbKeyListLinks  = "list_links"
	cbKeyCancel     = "cancel"
	cbKeyLinkStats  = "link_stats"
	cbKeyDeleteLink = "delete_link"
	cbKeyRenameLink = "rename_link"
)

// maxMessageLen keeps each outgoing message safely under Telegram's 4096
// character limit; longer link listings are split into several messages.
const maxMessageLen = 3500

const (
	textWelcome = "✨ Welcome!\nYou can:\n🔗 Shorten links\n📊 See click statistics\n📋 Keep your links"
	textHelp    = "🔗 Shorten a link — send a URL, get a short one and save it under a name.\n" +
		"📊 Link statistics — pick a saved link to see clicks and countries.\n" +
		"📋 My links — list everything you saved.\n" +
		"Commands: /start, /help, /links"
	textUseMenu        = "🤖 Please use the menu buttons or /help."
	textNoLinks        = "📋 You have no saved links"
	textAskLink        = "🔗 Send the link (http://... or https://...):"
	textBadLink        = "❌ Invalid or unreachable URL. Try again (example: https://example.com):"
	textShortening     = "⏳ Shortening…"
	textAskTitle       = "📝 Send a name for the link (up to 100 characters):"
	textEmptyTitle     = "❌ The name cannot be empty, try again:"
	textDuplicateLink  = "⚠️ This link is already saved"
	textLinkGone       = "❌ This link no longer exists"
	textDeleted        = "🗑 Link deleted"
	textAskNewTitle    = "📝 Send the new name (up to 100 characters):"
	textRenamed        = "✏️ Link renamed"
	textCancelled      = "✅ Cancelled"
	textPickLink       = "📊 Pick a link to see its statistics:"
	textGenericFailure = "❌ Something went wrong. Please try again."
)

func (h *Handlers) mainMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
		{Text: "🔗 Shorten a link", Unique: cbKeyAddLink},
		{Text: "📊 Link statistics", Unique: cbKeyStats},
		{Text: "📋 My links", Unique: cbKeyListLinks},
	}, 2)
}

func cancelMarkup() *tele.ReplyMarkup {
	return keyboard.SingleCancelMarkup(cbKeyCancel)
}

func savedLinkText(rec storage.LinkRecord) string {
	return fmt.Sprintf("✅ Link saved:\n*%s*\n%s", format.EscapeMarkdown(rec.Title), rec.ShortURL)
}

// linkListPages renders the user's links into one or more message bodies,
// splitting whenever a page would exceed maxMessageLen.
func linkListPages(links []storage.LinkRecord) []string {
	var pages []string
	var sb strings.Builder
	sb.WriteString("📋 Your links:\n\n")

	for _, rec := range links {
		block := fmt.Sprintf("🔗 %s:\n%s\nCreated: %s\n\n",
			format.EscapeMarkdown(rec.Title),
			rec.ShortURL,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
		)
		if sb.Len()+len(block) > maxMessageLen {
			pages = append(pages, strings.TrimRight(sb.String(), "\n"))
			sb.Reset()
		}
		sb.WriteString(block)
	}
	pages = append(pages, strings.TrimRight(sb.String(), "\n"))
	return pages
}

// linkSelectionMarkup builds one button per saved link carrying its index,
// plus a cancel row.
func linkSelectionMarkup(links []storage.LinkRecord) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(links)+1)
	for i, rec := range links {
		label := rec.Title
		if r := []rune(label); len(r) > 32 {
			label = string(r[:32]) + "…"
		}
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%d. %s", i+1, label),
			Unique: cbKeyLinkStats,
			Data:   strconv.Itoa(i),
		})
	}
	markup := keyboard.InlineButtons(buttons)
	cancel := keyboard.CancelButton(markup, cbKeyCancel)
	markup.InlineKeyboard = append(markup.InlineKeyboard, []tele.InlineButton{*cancel.Inline()})
	return markup
}

// linkActionsMarkup offers rename and delete for the selected link.
func linkActionsMarkup(index int) *tele.ReplyMarkup {
	payload := strconv.Itoa(index)
	return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
		{Text: "✏️ Rename", Unique: cbKeyRenameLink, Data: payload},
		{Text: "🗑 Delete", Unique: cbKeyDeleteLink, Data: payload},
		{Text: "🚫 Close", Unique: cbKeyCancel},
	}, 2)
}

// statsSummaryLine aggregates the batch results shown above the selection keyboard.
func statsSummaryLine(results []vk.StatsResult) string {
	total := 0
	for _, r := range results {
		total += r.TotalViews
	}
	return fmt.Sprintf("👁 Total across %d links: %d views", len(results), total)
}

// statsText renders per-link statistics with a per-country breakdown.
// Country lines are sorted by views, then by name for stable output.
func statsText(rec storage.LinkRecord, stats vk.StatsResult, countryNames map[string]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s\n%s\n\n👁 Views: %d\n", format.EscapeMarkdown(rec.Title), rec.ShortURL, stats.TotalViews)

	if len(stats.ViewsByCountry) == 0 {
		return sb.String()
	}

	type countryViews struct {
		name  string
		views int
	}
	rows := make([]countryViews, 0, len(stats.ViewsByCountry))
	for id, views := range stats.ViewsByCountry {
		name := countryNames[id]
		if name == "" {
			name = id
		}
		rows = append(rows, countryViews{name: name, views: views})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].views != rows[j].views {
			return rows[i].views > rows[j].views
		}
		return rows[i].name < rows[j].name
	})

	sb.WriteString("\n🌍 By country:\n")
	for _, row := range rows {
		fmt.Fprintf(&sb, "• %s: %d\n", format.EscapeMarkdown(row.name), row.views)
	}
	return sb.String()
}
