package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-tagfeed/internal/logging"
	"github.com/goliatone/go-tagfeed/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("sitegen.feeds")
	logger = logging.WithFields(logger, map[string]any{"module": "sitegen.feeds"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"build_id": "build-1234",
	})
	logger = logger.WithContext(ctx)

	buildID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("feeds.tag.written",
		"tag", "data science",
		"generation", buildID,
		"generated_at", time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
	)

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535Z INFO  [sitegen.feeds] feeds.tag.written build_id=build-1234 generated_at=2024-03-15T08:00:00Z generation=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 tag="data science"`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: time.Now,
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("sitegen.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected info log to be written, got %s", lines[0])
	}
	if strings.Contains(lines[0], "ignored.debug") {
		t.Fatalf("unexpected debug log present: %s", lines[0])
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want console.Level
		ok   bool
	}{
		{"debug", console.LevelDebug, true},
		{" WARNING ", console.LevelWarn, true},
		{"fatal", console.LevelFatal, true},
		{"", console.LevelInfo, false},
		{"verbose", console.LevelInfo, false},
	}
	for _, tc := range cases {
		got, ok := console.ParseLevel(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseLevel(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestConsoleLogger_KeepsForeignModuleAndOddArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	})

	logger := logging.WithFields(provider.GetLogger("sitegen.site"), map[string]any{"module": "sitegen.feeds"})
	logger.Warn("site.layout.missing", "page", "tags/go/atom.xml", 42, "orphan", "dangling")

	got := strings.TrimSpace(buf.String())
	want := `2024-01-01T00:00:00.000Z WARN  [sitegen.site] site.layout.missing arg_2=orphan arg_4=dangling module=sitegen.feeds page=tags/go/atom.xml`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}
