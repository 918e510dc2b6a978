// Package logging configures the debug logger. A TUI owns the terminal,
// so log output goes to a file, and only when BILIMGO_DEBUG points at one.
package logging

import (
	"os"

	"go.uber.org/zap"
)

// Setup returns a logger writing to the file named by BILIMGO_DEBUG, or a
// no-op logger when the variable is unset. The returned func flushes
// buffered entries and is safe to defer even for the no-op case.
func Setup() (*zap.Logger, func(), error) {
	path := os.Getenv("BILIMGO_DEBUG")
	if path == "" {
		return zap.NewNop(), func() {}, nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}
