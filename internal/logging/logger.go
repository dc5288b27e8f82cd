package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a development logger when debug is set, a JSON production
// logger otherwise.
func New(debug bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// Must is New for entry points that cannot continue without a logger.
func Must(debug bool) *zap.Logger {
	logger, err := New(debug)
	if err != nil {
		panic(err)
	}
	return logger
}
