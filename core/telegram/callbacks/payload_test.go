package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name    string
		cb      *tele.Callback
		unique  string
		payload string
	}{
		{"nil callback", nil, "", ""},
		{"unique set by telebot", &tele.Callback{Unique: "link_stats", Data: "3"}, "link_stats", "3"},
		{"raw encoded data", &tele.Callback{Data: "\\flink_stats|3"}, "link_stats", "3"},
		{"raw without payload", &tele.Callback{Data: "\\fcancel"}, "cancel", ""},
		{"payload with separator", &tele.Callback{Data: "\\fkey|a|b"}, "key", "a|b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unique, payload := ParseCallbackData(tt.cb)
			assert.Equal(t, tt.unique, unique)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

type cbContext struct {
	tele.Context
	cb *tele.Callback
}

func (c *cbContext) Callback() *tele.Callback { return c.cb }

func TestPayloadInt(t *testing.T) {
	c := &cbContext{cb: &tele.Callback{Unique: "delete_link", Data: " 7 "}}
	n, err := PayloadInt(c)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	c = &cbContext{cb: &tele.Callback{Unique: "delete_link", Data: "x"}}
	_, err = PayloadInt(c)
	assert.Error(t, err)

	c = &cbContext{cb: nil}
	_, err = PayloadInt(c)
	assert.Error(t, err)
}

func TestCallbackKey(t *testing.T) {
	c := &cbContext{cb: &tele.Callback{Unique: "stats"}}
	assert.Equal(t, "stats", CallbackKey(c))

	c = &cbContext{cb: nil}
	assert.Equal(t, "", CallbackKey(c))
}
