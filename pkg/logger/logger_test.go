package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: InfoLevel, Output: &buf}).With("outbox")

	l.Debug("hidden")
	l.Error(errors.New("boom"), "publish failed", "event_type", "modifiers.INSERT")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"component":"outbox"`)
	assert.Contains(t, out, `"event_type":"modifiers.INSERT"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, InfoLevel, ParseLevel("nope"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}
