package debug

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutputAndInit(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	assert.True(t, Enabled())

	Debug("hidden", "k", 1)
	Info("table synced", "table", "users", "outcome", "already_in_sync")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "table=users")
	assert.Contains(t, buf.String(), "outcome=already_in_sync")

	Init(false)
	assert.False(t, Enabled())
	buf.Reset()
	Error("dropped")
	assert.Empty(t, buf.String())
}
