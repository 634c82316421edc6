package cmdlog

import (
	"time"

	"whereisxur/internal/logging"
	"whereisxur/internal/metrics"
)

// Run counts, times and logs one CLI command.
func Run(cmd string, f func() error) error {
	metrics.IncCommandRun(cmd)
	start := time.Now()
	err := f()
	fields := map[string]any{"cmd": cmd, "took_ms": time.Since(start).Milliseconds()}
	if err != nil {
		metrics.IncCommandError(cmd)
		fields["error"] = err.Error()
		logging.Error("command_error", fields)
	} else {
		logging.Debug("command_ok", fields)
	}
	return err
}
