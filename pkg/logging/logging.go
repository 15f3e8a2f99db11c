package logging

import (
	"log"

	"go.uber.org/zap"
)

// New builds the application logger. Development mode gets human-readable
// console output, everything else structured JSON.
func New(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	return logger
}
