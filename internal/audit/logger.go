// Package audit records every service-call outcome and mailbox mutation
// of a run: a structured log file for live inspection and a SQLite
// journal for post-run queries.
package audit

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a JSON file logger tagged with the run ID. Every
// entry of a run carries the same run_id so interleaved runs can be
// told apart in the shared log file.
func NewLogger(logPath, runID string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building audit logger: %w", err)
	}

	return logger.With(zap.String("run_id", runID)), nil
}
