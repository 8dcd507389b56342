package notice

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GreatAuk/webupdate/internal/i18n"
)

func TestRenderPrecedence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		opts      Options
		wantTitle string
		wantBtn   string
	}{
		{
			name:      "props override wins",
			opts:      Options{Locale: "en_US", Props: Props{Title: "Override"}},
			wantTitle: "Override",
			wantBtn:   "refresh",
		},
		{
			name:      "locale data over preset",
			opts:      Options{Locale: "en_US", LocaleData: i18n.Table{"en_US": {i18n.KeyTitle: "From data"}}},
			wantTitle: "From data",
			wantBtn:   "refresh",
		},
		{
			name:      "unknown locale falls to default preset",
			opts:      Options{Locale: "fr_FR"},
			wantTitle: "发现新版本",
			wantBtn:   "刷新",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			n := Render("v1", tt.opts)
			if n.Title != tt.wantTitle {
				t.Fatalf("Title = %q, want %q", n.Title, tt.wantTitle)
			}
			if n.ButtonText != tt.wantBtn {
				t.Fatalf("ButtonText = %q, want %q", n.ButtonText, tt.wantBtn)
			}
		})
	}
}

func TestHTMLFragment(t *testing.T) {
	t.Parallel()
	n := Render("v7", Options{Locale: "en_US"})
	html := n.HTML()

	for _, class := range []string{NoticeClass, ContentClass, RefreshButtonClass, DismissButtonClass} {
		if !strings.Contains(html, class) {
			t.Fatalf("fragment missing class %q:\n%s", class, html)
		}
	}
	if !strings.Contains(html, `data-version="v7"`) {
		t.Fatalf("fragment missing version attribute:\n%s", html)
	}
}

func TestHTMLHidesDismiss(t *testing.T) {
	t.Parallel()
	n := Render("v7", Options{Locale: "en_US", HideDismiss: true})
	if strings.Contains(n.HTML(), DismissButtonClass) {
		t.Fatal("dismiss control should be omitted")
	}
}

func TestHTMLCustomBody(t *testing.T) {
	t.Parallel()
	n := Render("v7", Options{CustomHTML: `<p id="mine">hi</p>`})
	html := n.HTML()
	if !strings.Contains(html, `<p id="mine">hi</p>`) {
		t.Fatalf("custom body should pass through verbatim:\n%s", html)
	}
	if strings.Contains(html, ContentClass) {
		t.Fatal("custom body should replace the default content entirely")
	}
	if n.Title != "" {
		t.Fatal("composed fields should be empty with a custom body")
	}
}

func TestHTMLEscapesComposedFields(t *testing.T) {
	t.Parallel()
	n := Render("v7", Options{Props: Props{Title: `<script>alert(1)</script>`}})
	if strings.Contains(n.HTML(), "<script>") {
		t.Fatal("composed fields must be escaped")
	}
}

func TestMemoryAnchorSingleSlot(t *testing.T) {
	t.Parallel()
	a := NewMemoryAnchor()
	ctx := context.Background()

	h, err := a.Mount(ctx, Render("v1", Options{}), Controls{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if _, err := a.Mount(ctx, Render("v2", Options{}), Controls{}); err != ErrAnchorOccupied {
		t.Fatalf("second Mount err = %v, want ErrAnchorOccupied", err)
	}

	if err := h.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if a.Current() != nil {
		t.Fatal("anchor should be empty after Remove")
	}
	// Remove is idempotent.
	if err := h.Remove(); err != nil {
		t.Fatalf("Remove (again): %v", err)
	}

	if _, err := a.Mount(ctx, Render("v2", Options{}), Controls{}); err != nil {
		t.Fatalf("Mount after Remove: %v", err)
	}
}

func TestHandleControls(t *testing.T) {
	t.Parallel()
	a := NewMemoryAnchor()
	var refreshes, dismissals int
	h, err := a.Mount(context.Background(), Render("v1", Options{}), Controls{
		OnRefresh: func() { refreshes++ },
		OnDismiss: func() { dismissals++ },
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	h.Refresh()
	h.Refresh()
	h.Dismiss()
	if refreshes != 2 {
		t.Fatalf("refreshes = %d, want 2", refreshes)
	}
	if dismissals != 1 {
		t.Fatalf("dismissals = %d, want 1", dismissals)
	}
}

func TestFileAnchor(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "notice.html")
	a := NewFileAnchor(path)

	h, err := a.Mount(context.Background(), Render("v1", Options{Locale: "en_US"}), Controls{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("fragment file not written: %v", err)
	}
	if !strings.Contains(string(b), NoticeClass) {
		t.Fatalf("fragment file missing markup:\n%s", b)
	}

	if err := h.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("fragment file should be deleted on Remove")
	}
}

func TestFileAnchorMissingTarget(t *testing.T) {
	t.Parallel()
	a := NewFileAnchor("")
	if _, err := a.Mount(context.Background(), Render("v1", Options{}), Controls{}); err != ErrNoAnchor {
		t.Fatalf("err = %v, want ErrNoAnchor", err)
	}
}
