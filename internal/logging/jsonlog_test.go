package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	SetLevel("info")

	Info("watch_tick", map[string]any{"active": true})
	Debug("hidden", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "watch_tick", got["msg"])
	assert.Equal(t, "INFO", got["level"])
	assert.Equal(t, true, got["active"])
	assert.Equal(t, Instance(), got["instance"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	defer SetLevel("info")

	SetLevel("error")
	Warn("quiet", nil)
	assert.Zero(t, buf.Len())
	Error("loud", map[string]any{"error": "boom"})
	assert.Contains(t, buf.String(), `"error":"boom"`)

	SetLevel("DEBUG")
	Debug("visible", nil)
	assert.Contains(t, buf.String(), "visible")
}
