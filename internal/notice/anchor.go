package notice

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// handle is the shared Handle implementation; detach is backend-specific.
type handle struct {
	mu       sync.Mutex
	notice   *Notice
	controls Controls
	detach   func() error
	removed  bool
}

func (h *handle) Notice() *Notice { return h.notice }

func (h *handle) Refresh() {
	h.mu.Lock()
	fn := h.controls.OnRefresh
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (h *handle) Dismiss() {
	h.mu.Lock()
	fn := h.controls.OnDismiss
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (h *handle) Remove() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removed {
		return nil
	}
	h.removed = true
	if h.detach == nil {
		return nil
	}
	return h.detach()
}

// MemoryAnchor holds the mounted notice in memory. Embedding hosts read the
// fragment via Current/CurrentHTML and surface it however they like; it is
// also the anchor used throughout the tests.
type MemoryAnchor struct {
	mu      sync.Mutex
	current *Notice
	mounted *handle
}

func NewMemoryAnchor() *MemoryAnchor { return &MemoryAnchor{} }

func (a *MemoryAnchor) Mount(ctx context.Context, n *Notice, c Controls) (Handle, error) {
	_ = ctx
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		return nil, ErrAnchorOccupied
	}
	h := &handle{
		notice:   n,
		controls: c,
		detach: func() error {
			a.mu.Lock()
			a.current = nil
			a.mounted = nil
			a.mu.Unlock()
			return nil
		},
	}
	a.current = n
	a.mounted = h
	return h, nil
}

// Current returns the mounted notice, or nil.
func (a *MemoryAnchor) Current() *Notice {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Handle returns the mounted notice's handle, or nil. Hosts use it to relay
// the user's control activations (refresh/dismiss clicks).
func (a *MemoryAnchor) Handle() Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mounted == nil {
		return nil
	}
	return a.mounted
}

// CurrentHTML returns the mounted notice's fragment, or "".
func (a *MemoryAnchor) CurrentHTML() string {
	n := a.Current()
	if n == nil {
		return ""
	}
	return n.HTML()
}

// FileAnchor materializes the notice as an HTML fragment file next to the
// site (for a server-side include). Mounting writes the file; removal
// deletes it.
type FileAnchor struct {
	Path string

	mu      sync.Mutex
	current *Notice
}

func NewFileAnchor(path string) *FileAnchor { return &FileAnchor{Path: path} }

func (a *FileAnchor) Mount(ctx context.Context, n *Notice, c Controls) (Handle, error) {
	_ = ctx
	if strings.TrimSpace(a.Path) == "" {
		return nil, ErrNoAnchor
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		return nil, ErrAnchorOccupied
	}

	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return nil, err
	}
	tmp := a.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(n.HTML()), 0o644); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, a.Path); err != nil {
		return nil, err
	}

	a.current = n
	return &handle{
		notice:   n,
		controls: c,
		detach: func() error {
			a.mu.Lock()
			a.current = nil
			a.mu.Unlock()
			err := os.Remove(a.Path)
			if os.IsNotExist(err) {
				return nil
			}
			return err
		},
	}, nil
}
