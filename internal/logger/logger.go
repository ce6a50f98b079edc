// Package logger builds the zap logger shared by the client binaries.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Logger holds the process logger. It starts as a no-op so packages may
// log before Init runs.
type Logger struct {
	Log *zap.Logger
}

// New returns a Logger backed by zap.NewNop.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init replaces the no-op logger with a JSON logger at the given level.
// Output goes to the given paths ("stderr", "stdout" or files); stderr is
// used when none are given. Parent directories of file paths are created.
func (l *Logger) Init(level string, paths ...string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}
	for _, p := range paths {
		if p == "stderr" || p == "stdout" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = paths
	cfg.ErrorOutputPaths = paths
	zl, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	l.Log = zl
	return nil
}
