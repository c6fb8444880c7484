package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter_WritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.With(map[string]any{"form_id": "sf424a"}).
		WithError(errors.New("boom")).
		Warn("render failed", map[string]any{"reason": "structure"})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "render failed", entries[0].Message)
		assert.Equal(t, "sf424a", ctx["form_id"])
		assert.Equal(t, "structure", ctx["reason"])
		assert.Equal(t, "boom", ctx["error"])
	}
}

func TestNew_Levels(t *testing.T) {
	assert.True(t, New("debug", "console").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, New("warn", "json").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, New("", "json").Core().Enabled(zapcore.InfoLevel))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.Info("ignored", nil)
	log.With(nil).Error("ignored", map[string]any{"k": 1})
}
