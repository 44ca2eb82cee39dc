package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	t.Run("Default level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		Init()
		assert.NotNil(t, log)
	})

	t.Run("Debug level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		Init()
		assert.NotNil(t, log)
	})

	t.Run("Unknown level falls back to info", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "chatty")
		Init()
		assert.NotNil(t, log)
	})
}

func TestLoggingDoesNotPanic(t *testing.T) {
	Init()

	assert.NotPanics(t, func() {
		Info("info message", "key", "value")
		Infof("formatted %d", 42)
		Debug("debug message")
		Error("error message", "err", "boom")
		Errorf("formatted error %s", "boom")
	})
}
