// Package logger builds the zap logger shared by the CLI and the loader.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger for mode: "dev" (human-readable, debug level),
// "prod" (JSON, info level) or "nop"/"" (discard everything).
// Output goes to stderr so it never mixes with command output.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "nop", "off", "none":
		return zap.NewNop(), nil
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "dev", "development", "debug":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log mode %q (valid: dev, prod, nop)", mode)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
