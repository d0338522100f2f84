// Package logging constructs the application's zap loggers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New creates a logger appropriate for the given environment.
// "local" and "dev" get human-readable development output at debug level;
// everything else gets production JSON output.
func New(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch env {
	case "local", "dev":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}
