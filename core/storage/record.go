package storage

import (
	"strings"
	"time"
)

const (
	// MaxLinksPerUser bounds the per-user collection; the oldest record is
	// evicted when a new link would exceed it.
	MaxLinksPerUser = 50
	// MaxTitleLen caps link titles in runes.
	MaxTitleLen = 100
)

// LinkRecord is a saved association of an original URL, its shortened form,
// a display title, and the key used to query click statistics.
// Only Title is mutable after creation.
type LinkRecord struct {
	Title       string    `json:"title"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	StatsKey    string    `json:"stats_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// TruncateTitle trims surrounding whitespace and caps the title at MaxTitleLen runes.
func TruncateTitle(title string) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) > MaxTitleLen {
		return string(runes[:MaxTitleLen])
	}
	return title
}
