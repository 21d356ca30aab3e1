package telemetry

import (
	"context"
	"testing"

	"github.com/smallbiznis/snackbar/internal/config"
	"github.com/smallbiznis/snackbar/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestTracerProviderWithoutEndpoint(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	tp, err := NewTracerProvider(lc, config.Config{AppName: "snackbar"}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tp)
	lc.RequireStart().RequireStop()
}

func TestCorrelationSpanProcessorTagsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(
		trace.WithSpanProcessor(&correlationSpanProcessor{}),
		trace.WithSpanProcessor(recorder),
	)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx := correlation.ContextWithCorrelationID(context.Background(), "cid-1")
	_, span := tp.Tracer("test").Start(ctx, "op")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), attribute.String("correlation_id", "cid-1"))
}
