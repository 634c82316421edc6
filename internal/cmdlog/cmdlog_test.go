package cmdlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"whereisxur/internal/logging"
)

func TestRunLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(os.Stdout)

	boom := errors.New("boom")
	if err := Run("schedule", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line not json: %v (%q)", err, buf.String())
	}
	if line["msg"] != "command_error" || line["cmd"] != "schedule" || line["error"] != "boom" {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestRunPassesThroughSuccess(t *testing.T) {
	called := false
	if err := Run("status", func() error { called = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("command body not called")
	}
}
