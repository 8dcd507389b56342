// Package webupdate notifies a deployed web page's visitors when a newer
// build of the site has shipped. A build step stamps a version manifest into
// the served output (see cmd/webupdate); the poller started here fetches it
// periodically, compares it to the version the page was built with, and
// surfaces a dismissible notification on mismatch.
package webupdate

import (
	"context"
	"sync"

	"github.com/GreatAuk/webupdate/internal/dismiss"
	"github.com/GreatAuk/webupdate/internal/eventbus"
	"github.com/GreatAuk/webupdate/internal/i18n"
	"github.com/GreatAuk/webupdate/internal/notice"
	"github.com/GreatAuk/webupdate/internal/poller"
	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

// Re-exported types so embedding hosts never import internal packages.
type (
	Options     = poller.Options
	Session     = poller.Session
	UpdateEvent = poller.UpdateEvent

	Props        = notice.Props
	Notice       = notice.Notice
	Controls     = notice.Controls
	Anchor       = notice.Anchor
	Handle       = notice.Handle
	MemoryAnchor = notice.MemoryAnchor
	FileAnchor   = notice.FileAnchor

	LocaleTable = i18n.Table

	Store       = dismiss.Store
	StoreConfig = dismiss.Config

	Event = eventbus.Event
	Bus   = eventbus.Bus
)

// EventUpdateDetected is the bus event type published on every mismatched
// check cycle.
const EventUpdateDetected = poller.EventUpdateDetected

// Well-known class names of the rendered notification markup.
const (
	AnchorClass        = notice.AnchorClass
	NoticeClass        = notice.NoticeClass
	ContentClass       = notice.ContentClass
	RefreshButtonClass = notice.RefreshButtonClass
	DismissButtonClass = notice.DismissButtonClass
)

func NewMemoryAnchor() *MemoryAnchor { return notice.NewMemoryAnchor() }

func NewFileAnchor(path string) *FileAnchor { return notice.NewFileAnchor(path) }

func NewBus() Bus { return eventbus.New() }

// OpenStore initializes a dismissal store. A disabled config yields
// (nil, nil); a nil Store in Options simply means dismissals are not
// remembered.
func OpenStore(cfg StoreConfig, log logx.Logger) (Store, error) {
	return dismiss.Open(cfg, log)
}

var (
	defaultMu      sync.Mutex
	defaultSession *Session
)

// CheckUpdate starts the polling lifecycle: an immediate check, recurring
// checks, and debounced event-triggered re-checks. The first successful call
// becomes the process-wide default session used by the package-level
// SetLocale. Calling it more than once creates additional independent
// sessions; avoiding duplicate pollers for the same page is the caller's
// responsibility.
func CheckUpdate(ctx context.Context, opts Options) (*Session, error) {
	s, err := poller.Start(ctx, opts)
	if err != nil {
		return nil, err
	}
	defaultMu.Lock()
	if defaultSession == nil {
		defaultSession = s
	}
	defaultMu.Unlock()
	return s, nil
}

// SetLocale switches the active locale of the default session at runtime,
// so subsequent notifications render in the new language immediately.
// No-op when no session has been started.
func SetLocale(locale string) {
	defaultMu.Lock()
	s := defaultSession
	defaultMu.Unlock()
	if s != nil {
		s.SetLocale(locale)
	}
}

// Locale reports the default session's active locale ("" when no session
// has been started).
func Locale() string {
	defaultMu.Lock()
	s := defaultSession
	defaultMu.Unlock()
	if s == nil {
		return ""
	}
	return s.Locale()
}

// Default returns the process-wide default session, or nil.
func Default() *Session {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultSession
}

// ResetDefault clears the process-wide default session without closing it.
// Intended for hosts that tear a session down and start a fresh one.
func ResetDefault() {
	defaultMu.Lock()
	defaultSession = nil
	defaultMu.Unlock()
}
