package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// New builds the process logger. Production mode logs JSON at info level;
// development mode logs colored console output at debug level.
func New(mode string) (*zap.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeProduction:
		return zap.NewProduction()
	case ModeDevelopment, "dev":
		return zap.NewDevelopment()
	default:
		return nil, fmt.Errorf("unknown log mode %q (want %s or %s)", mode, ModeProduction, ModeDevelopment)
	}
}
