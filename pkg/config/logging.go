package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a logger writing JSON lines to the configured file.
// Without a file the logger discards everything, so the terminal UI stays
// clean.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.Logging.File == "" {
		return zap.NewNop(), nil
	}
	level, err := zap.ParseAtomicLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.OutputPaths = []string{c.Logging.File}
	zc.ErrorOutputPaths = []string{c.Logging.File}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
