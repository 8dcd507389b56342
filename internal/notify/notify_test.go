package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

func TestWriterNotifier(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	n := &WriterNotifier{Out: &b}
	err := n.NotifyUpdate(context.Background(), UpdateInfo{
		URL:             "https://example.com",
		Version:         "v2",
		PreviousVersion: "v1",
		DetectedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NotifyUpdate: %v", err)
	}
	out := b.String()
	for _, want := range []string{"v2", "v1", "https://example.com"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
}

type countingNotifier struct{ calls int }

func (c *countingNotifier) NotifyUpdate(ctx context.Context, info UpdateInfo) error {
	c.calls++
	return nil
}

func TestServiceRateLimit(t *testing.T) {
	t.Parallel()
	c := &countingNotifier{}
	s := NewService(logx.Nop(), 1, c)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Announce(ctx, UpdateInfo{Version: "v2"})
	}
	if c.calls != 1 {
		t.Fatalf("calls = %d, want 1 (burst budget)", c.calls)
	}
}

func TestServiceNoChannels(t *testing.T) {
	t.Parallel()
	s := NewService(logx.Nop(), 1)
	// Must be a no-op, not a panic.
	s.Announce(context.Background(), UpdateInfo{Version: "v2"})
}
