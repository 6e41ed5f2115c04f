package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/pagecast/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Info().Msg("info message")

	if !strings.Contains(buf.String(), "info message") {
		t.Errorf("expected info message in output, got: %s", buf.String())
	}
}

func TestContextFields(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithDataType(ctx, "article")
	ctx = logging.WithRepository(ctx, "fast")
	ctx = logging.WithDownloadID(ctx, "abc-123")

	logging.FromContext(ctx).Info().Msg("settled")

	tl.AssertContains(t, `"data_type":"article"`)
	tl.AssertContains(t, `"repository":"fast"`)
	tl.AssertContains(t, `"download_id":"abc-123"`)
	tl.AssertContains(t, "settled")
}

func TestRequestID(t *testing.T) {
	ctx := logging.WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", logging.RequestID(ctx))
	assert.Empty(t, logging.RequestID(context.Background()))
}

func TestFromContextDefaults(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
}

func TestOrNop(t *testing.T) {
	l := zerolog.New(&bytes.Buffer{})
	assert.Same(t, &l, logging.OrNop(&l))
	assert.NotNil(t, logging.OrNop(nil))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARNING": zerolog.WarnLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"trace":   zerolog.TraceLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, logging.ParseLevel(in))
		})
	}
}

func TestNewLoggerFromConfig(t *testing.T) {
	old := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: "discard",
		Fields: map[string]any{"service": "pagecast"},
	})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}
