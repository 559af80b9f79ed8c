package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestEndSpanWithErrCheck(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() {
		require.NoError(t, provider.Shutdown(context.Background()))
	}()
	tracer := provider.Tracer("test")

	_, okSpan := tracer.Start(context.Background(), "rollover.ok")
	EndSpanWithErrCheck(okSpan, nil)
	_, errSpan := tracer.Start(context.Background(), "rollover.failed")
	EndSpanWithErrCheck(errSpan, errors.New("save monthly data"))

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "save monthly data", ended[1].Status().Description)
}

func TestHoneycombSetup_Disabled(t *testing.T) {
	shutdown, err := HoneycombSetup(false, "dailyscore-test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}
