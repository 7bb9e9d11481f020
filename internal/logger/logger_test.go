package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "Error", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	ctx := context.Background()
	if got := FromContext(ctx); got != L {
		t.Fatalf("expected global logger for bare context")
	}
	child := L.With(slog.String("component", "test"))
	ctx = WithContext(ctx, child)
	if got := FromContext(ctx); got != child {
		t.Fatalf("expected injected logger from context")
	}
}
