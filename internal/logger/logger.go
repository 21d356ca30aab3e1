package logger

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/snackbar/pkg/log/ctxlogger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level and the fields stamped on every register log line.
type Options struct {
	Level       string
	Service     string
	Environment string
}

// New builds the register logger and replaces the zap globals. Development
// logs are console encoded, everything else is JSON. Both go to stderr so
// command output on stdout stays clean.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	if strings.EqualFold(opts.Environment, "development") {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}

	level := strings.TrimSpace(opts.Level)
	if level == "" {
		level = "info"
	}
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if opts.Environment != "" {
		cfg.InitialFields = map[string]interface{}{"env": opts.Environment}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	// service is added per line by ctxlogger.WithContext
	if opts.Service != "" {
		ctxlogger.SetServiceName(opts.Service)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
