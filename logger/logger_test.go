package logger

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	log, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	log, err = New("not-a-level", "json")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
}

func TestLogError_WithOopsError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	err := oops.In("events").Code("EVENT_LOOKUP_FAILED").With("event_id", "abc").Errorf("lookup failed")
	LogError(log, "operation failed", err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "operation failed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "EVENT_LOOKUP_FAILED", fields["code"])
	assert.Equal(t, "events", fields["domain"])
	assert.Contains(t, fields["error"], "lookup failed")
}

func TestLogError_WithStandardError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	LogError(log, "operation failed", errors.New("standard error"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "standard error", logs.All()[0].ContextMap()["error"])
}
