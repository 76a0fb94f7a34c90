// Package format holds small text formatting helpers for outgoing messages.
package format

import "strings"

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"`", "\\`",
)

// EscapeMarkdown escapes the characters Telegram treats specially in
// Markdown (v1) so user-supplied text renders literally.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
