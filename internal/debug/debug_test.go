package debug

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugOutputGatedByFlag(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	defer SetLogger(nil)

	DebugOutput(false, "hidden %d", 1)
	assert.Empty(t, buf.String())

	DebugHeader(true)
	DebugOutput(true, "scored %d candidates", 3)
	done := DebugTiming(true, "compare")
	done()
	DebugFooter(true)

	out := buf.String()
	assert.Contains(t, out, "DEBUG START")
	assert.Contains(t, out, "scored 3 candidates")
	assert.Contains(t, out, "Completed: compare")
	assert.Contains(t, out, "DEBUG END")
}
