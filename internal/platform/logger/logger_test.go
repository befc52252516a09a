package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/lexio-api/internal/config"
)

func TestSetupParsesLogLevels(t *testing.T) {
	testCases := []struct {
		name     string
		level    string
		expected slog.Level
	}{
		{name: "debug level", level: "debug", expected: slog.LevelDebug},
		{name: "info level", level: "info", expected: slog.LevelInfo},
		{name: "warn level", level: "warn", expected: slog.LevelWarn},
		{name: "error level", level: "error", expected: slog.LevelError},
		{name: "mixed case", level: "DeBuG", expected: slog.LevelDebug},
		{name: "invalid falls back to info", level: "verbose", expected: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			original := slog.Default()
			defer slog.SetDefault(original)

			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.level})
			if err != nil {
				t.Fatalf("Setup returned error: %v", err)
			}

			if logger == nil {
				t.Fatal("Setup returned nil logger")
			}

			if !logger.Enabled(context.Background(), tc.expected) {
				t.Errorf("Expected level %v to be enabled", tc.expected)
			}

			if tc.expected > slog.LevelDebug && logger.Enabled(context.Background(), tc.expected-4) {
				t.Errorf("Expected level below %v to be disabled", tc.expected)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	tagged := slog.Default().With(slog.String("component", "test"))

	ctx := WithLogger(context.Background(), tagged)
	if got := FromContext(ctx); got != tagged {
		t.Error("Expected FromContext to return the logger stored in the context")
	}

	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("Expected FromContext to fall back to the default logger")
	}
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.Default().With(slog.String("component", "fallback"))

	if got := FromContextOrDefault(context.Background(), fallback); got != fallback {
		t.Error("Expected FromContextOrDefault to prefer the provided fallback")
	}

	stored := slog.Default().With(slog.String("component", "stored"))
	ctx := WithLogger(context.Background(), stored)
	if got := FromContextOrDefault(ctx, fallback); got != stored {
		t.Error("Expected FromContextOrDefault to prefer the context logger")
	}

	if got := FromContextOrDefault(context.Background(), nil); got != slog.Default() {
		t.Error("Expected FromContextOrDefault to fall back to the default logger")
	}
}

func TestContextLoggerEmitsThroughBuffer(t *testing.T) {
	ctx, logBuf := ContextWithTestLogger(t)

	FromContext(ctx).Info("answer recorded", slog.String("word_id", "abc"))

	AssertLogContains(t, logBuf, "answer recorded")
	AssertLogField(t, logBuf, "word_id", "abc")
}
