package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expected := NewLogger(TestConfig())
		ctx := ContextWithLogger(context.Background(), expected)

		actual := FromContext(ctx)

		require.NotNil(t, actual)
		assert.Equal(t, expected, actual)
	})

	t.Run("Should return default logger when no logger in context", func(t *testing.T) {
		l := FromContext(context.Background())

		require.NotNil(t, l)
		assert.Equal(t, GetDefault(), l)
	})

	t.Run("Should return default logger when wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerCtxKey, "not a logger")

		assert.Equal(t, GetDefault(), FromContext(ctx))
	})
}

func TestParseLevel(t *testing.T) {
	t.Run("Should map flag values to levels", func(t *testing.T) {
		assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
		assert.Equal(t, WarnLevel, ParseLevel("warning"))
		assert.Equal(t, ErrorLevel, ParseLevel(" error "))
		assert.Equal(t, DisabledLevel, ParseLevel("off"))
		assert.Equal(t, InfoLevel, ParseLevel("whatever"))
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write text records with key values", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})

		l.With("component", "pipeline").Info("document processed", "chunks", 3)

		out := buf.String()
		assert.Contains(t, out, "document processed")
		assert.Contains(t, out, "component")
		assert.Contains(t, out, "pipeline")
		assert.Contains(t, out, "chunks")
	})

	t.Run("Should emit JSON when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true, TimeFormat: "15:04:05"})

		l.Info("hello")

		out := buf.String()
		assert.True(t, strings.Contains(out, "{") && strings.Contains(out, "}"))
		assert.Contains(t, out, "hello")
	})

	t.Run("Should filter records below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: WarnLevel, Output: &buf, TimeFormat: "15:04:05"})

		l.Info("hidden")
		l.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("Should drop everything when disabled", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DisabledLevel, Output: &buf})

		l.Error("nope")

		assert.Empty(t, buf.String())
	})
}
