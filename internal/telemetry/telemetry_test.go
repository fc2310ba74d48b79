package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown() // must not panic
}

func TestStartCompileAndMethodSpans(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	ctx, span := StartCompile(context.Background(), "Example")
	require.NotNil(t, span)
	span.End()

	_, methodSpan := StartMethod(ctx, "Example", "main()V")
	require.NotNil(t, methodSpan)
	methodSpan.End()
}

func TestGetTracerReturnsNonNil(t *testing.T) {
	require.NotNil(t, GetTracer())
}
