package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionsDefaultToIdle(t *testing.T) {
	s := NewSessions()
	assert.IsType(t, Idle{}, s.Get(1))
	assert.False(t, s.InProgress(1))
}

func TestSessionsSetAndReset(t *testing.T) {
	s := NewSessions()

	s.Set(1, AwaitingTitle{OriginalURL: "https://example.com", ShortURL: "https://vk.cc/a", StatsKey: "a"})
	assert.True(t, s.InProgress(1))

	st, ok := s.Get(1).(AwaitingTitle)
	assert.True(t, ok)
	assert.Equal(t, "a", st.StatsKey)

	s.Reset(1)
	assert.False(t, s.InProgress(1))
	assert.IsType(t, Idle{}, s.Get(1))
}

func TestSettingIdleClearsSession(t *testing.T) {
	s := NewSessions()

	s.Set(1, AwaitingLink{})
	s.Set(1, Idle{})
	assert.False(t, s.InProgress(1))
}

func TestSessionsAreIndependentPerUser(t *testing.T) {
	s := NewSessions()

	s.Set(1, AwaitingLink{})
	assert.False(t, s.InProgress(2))

	s.Reset(2)
	assert.True(t, s.InProgress(1))
}
