package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/internal/logging/console"
)

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
	})

	logger := logging.ProvidersLogger(provider)
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	logger = logger.WithContext(ctx)

	logger.Warn("provider.auth_failed", "provider", "restlist", "error", errors.New("bad key"))

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26Z WARN provider.auth_failed error="bad key" logger=formbridge.providers module=formbridge.providers provider=restlist request_id=req-1`
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	min := console.ParseLevel("info")
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &min})

	logger := provider.GetLogger("formbridge.test")
	logger.Debug("dropped")
	logger.Info("kept", "odd")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "kept") || !strings.Contains(lines[0], "field_0=odd") {
		t.Fatalf("unexpected line %s", lines[0])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"WARNING": console.LevelWarn,
		"error":   console.LevelError,
		"bogus":   console.LevelInfo,
	}
	for in, want := range cases {
		if got := console.ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
