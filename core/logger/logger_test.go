package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keei051/kara-boy/core/config"
)

func TestInitRejectsBadLevel(t *testing.T) {
	_, err := Init(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestInitBuildsLogger(t *testing.T) {
	log, err := Init(config.LoggingConfig{Level: "debug", Profile: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("anything", 0))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc…", Truncate("abcdef", 3))
	// Rune-safe on multibyte input.
	assert.Equal(t, "привет…", Truncate(strings.Repeat("привет", 3), 6))
}
