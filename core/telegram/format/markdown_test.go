package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `my \_link\_ \*title\*`, EscapeMarkdown("my _link_ *title*"))
	assert.Equal(t, "\\[tag\\`", EscapeMarkdown("[tag`"))
	assert.Equal(t, "plain text", EscapeMarkdown("plain text"))
}
