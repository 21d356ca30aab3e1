package logger

import (
	"context"
	"testing"

	"github.com/smallbiznis/snackbar/internal/config"
	"github.com/smallbiznis/snackbar/pkg/log/ctxlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New(Options{Environment: "production"})
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.Same(t, log, zap.L())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewFromConfigNamesService(t *testing.T) {
	log, err := NewFromConfig(config.Config{AppName: "lanchonete", Environment: "development", LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	core, logs := observer.New(zap.InfoLevel)
	ctxlogger.WithContext(context.Background(), zap.New(core)).Info("sale registered")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "lanchonete", logs.All()[0].ContextMap()["service"])
}
