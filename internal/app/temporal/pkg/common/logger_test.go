package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	adapter := NewZapAdapter(zap.New(core))

	adapter.Info("Activity started", "ActivityType", "StartTranscription", "Attempt", 1)
	adapter.With("WorkflowID", "pipeline-a.mp3").Warn("Retrying", 42, "x", "dangling")

	entries := logs.AllUntimed()
	assert.Len(t, entries, 2)

	assert.Equal(t, "Activity started", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"ActivityType": "StartTranscription", "Attempt": int64(1)}, entries[0].ContextMap())

	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, map[string]interface{}{
		"WorkflowID": "pipeline-a.mp3",
		"42":         "x",
		"extra":      "dangling",
	}, entries[1].ContextMap())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(true)
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	logger, err = NewLogger(false)
	assert.NoError(t, err)
	assert.NotNil(t, logger)
}
