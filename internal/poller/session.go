// Package poller owns the update-check lifecycle: the recurring timer, the
// debounced event triggers, and the decision of whether a check surfaces a
// notification.
package poller

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GreatAuk/webupdate/internal/artifact"
	"github.com/GreatAuk/webupdate/internal/dismiss"
	"github.com/GreatAuk/webupdate/internal/eventbus"
	"github.com/GreatAuk/webupdate/internal/i18n"
	"github.com/GreatAuk/webupdate/internal/notice"
	"github.com/GreatAuk/webupdate/internal/runtime/supervisor"
	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

// EventUpdateDetected is published on the bus for every check cycle that
// observes a version mismatch, independent of dismissal or suppression
// state. It is the host's hook for custom update UX.
const EventUpdateDetected = "web_update_notice"

const (
	// DefaultCheckInterval matches the artifact's deployment cadence for
	// typical sites; hosts tune it via Options.CheckInterval.
	DefaultCheckInterval = 10 * time.Minute

	// debounceWindow guards the visibility/focus triggers.
	debounceWindow = 5 * time.Second
)

// ResourceTagScript marks a failing resource as a script tag, the one
// resource kind whose load error forces an immediate re-check.
const ResourceTagScript = "script"

// Options configures a Session. Immutable once the session starts.
type Options struct {
	// Base is the URL prefix the version artifact is served under
	// (the host page's injectFileBase).
	Base string
	// BuiltVersion is the version this deployment was built with; the
	// host exposes it to the process before the poller runs.
	BuiltVersion string

	CheckInterval time.Duration
	// CheckSchedule optionally replaces the fixed interval with a cron
	// expression (daemon deployments).
	CheckSchedule string

	// HideDefaultNotice suppresses automatic notification display; the
	// host renders its own UI from the update-detected event.
	HideDefaultNotice bool
	HideDismissButton bool
	Props             notice.Props
	CustomHTML        string
	Locale            string
	LocaleData        i18n.Table

	// Collaborators. Anchor defaults to an in-memory anchor, Bus to a
	// private bus; Store may be nil (dismissals not remembered).
	Anchor notice.Anchor
	Store  dismiss.Store
	Bus    eventbus.Bus
	HTTP   *http.Client

	// OnRefresh runs when the user activates the refresh control. The
	// default logs; an embedding page wires its reload here.
	OnRefresh func()

	Log logx.Logger
}

// UpdateEvent is the payload of EventUpdateDetected.
type UpdateEvent struct {
	Version string
	Options Options
}

// Session is a running poller. All mutable state lives here so independent
// sessions can coexist and tests get a clean lifecycle.
type Session struct {
	opts   Options
	client *artifact.Client
	bus    eventbus.Bus
	store  dismiss.Store
	anchor notice.Anchor
	log    logx.Logger
	sup    *supervisor.Supervisor

	debounce *Debouncer

	mu             sync.Mutex
	hasShownNotice bool
	latestVersion  string
	currentLocale  string
	localeSet      bool
	handle         notice.Handle
}

// Start begins the polling lifecycle: an immediate check, then recurring
// checks every CheckInterval (or per CheckSchedule).
func Start(ctx context.Context, opts Options) (*Session, error) {
	if strings.TrimSpace(opts.Base) == "" {
		return nil, errors.New("poller: Base is required")
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.Anchor == nil {
		opts.Anchor = notice.NewMemoryAnchor()
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.New()
	}
	log := opts.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("comp", "poller"))

	s := &Session{
		opts:   opts,
		client: &artifact.Client{Base: opts.Base, HTTP: opts.HTTP},
		bus:    opts.Bus,
		store:  opts.Store,
		anchor: opts.Anchor,
		log:    log,
		sup:    supervisor.New(ctx, supervisor.WithLogger(log)),
	}
	s.debounce = NewDebouncer(debounceWindow, func() {
		s.check(s.sup.Context())
	})

	s.sup.Go("poller.loop", s.loop)
	return s, nil
}

func (s *Session) loop(ctx context.Context) error {
	// First check runs immediately, before any interval elapses.
	s.check(ctx)

	if spec := strings.TrimSpace(s.opts.CheckSchedule); spec != "" {
		c := cron.New()
		if _, err := c.AddFunc(spec, func() { s.check(ctx) }); err != nil {
			s.log.Error("invalid check schedule, falling back to interval",
				logx.String("schedule", spec), logx.Err(err))
		} else {
			c.Start()
			<-ctx.Done()
			stop := c.Stop()
			<-stop.Done()
			return ctx.Err()
		}
	}

	t := time.NewTicker(s.opts.CheckInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.check(ctx)
		}
	}
}

// check runs one full check cycle. Failures are logged and abort the cycle;
// they never stop the recurring timer.
func (s *Session) check(ctx context.Context) {
	m, err := s.client.Fetch(ctx)
	if err != nil {
		s.log.Warn("update check failed", logx.Err(err))
		return
	}

	s.mu.Lock()
	s.latestVersion = m.Version
	s.mu.Unlock()

	if m.Version == s.opts.BuiltVersion {
		return
	}

	// The event fires on every mismatched cycle, even for a dismissed
	// version; suppression only applies to the default notification.
	s.bus.Publish(eventbus.Event{
		Type: EventUpdateDetected,
		Data: UpdateEvent{Version: m.Version, Options: s.opts},
	})

	if s.opts.HideDefaultNotice {
		return
	}

	s.mu.Lock()
	shown := s.hasShownNotice
	s.mu.Unlock()
	if shown {
		return
	}

	if s.store != nil {
		dismissed, err := s.store.IsDismissed(ctx, m.Version)
		if err != nil {
			s.log.Warn("dismissal lookup failed, treating as not dismissed", logx.Err(err))
		} else if dismissed {
			return
		}
	}

	s.show(ctx, m.Version)
}

func (s *Session) show(ctx context.Context, version string) {
	s.mu.Lock()
	if s.hasShownNotice {
		s.mu.Unlock()
		return
	}
	if !s.localeSet {
		s.currentLocale = s.defaultLocale()
		s.localeSet = true
	}
	locale := s.currentLocale
	s.mu.Unlock()

	n := notice.Render(version, notice.Options{
		Locale:      locale,
		LocaleData:  s.opts.LocaleData,
		Props:       s.opts.Props,
		CustomHTML:  s.opts.CustomHTML,
		HideDismiss: s.opts.HideDismissButton,
	})

	controls := notice.Controls{
		OnRefresh: func() {
			if s.opts.OnRefresh != nil {
				s.opts.OnRefresh()
				return
			}
			s.log.Info("page refresh requested", logx.String("version", version))
		},
		OnDismiss: func() { s.dismissCurrent() },
	}

	h, err := s.anchor.Mount(ctx, n, controls)
	if err != nil {
		s.log.Error("failed to mount update notice", logx.Err(err))
		return
	}

	// The flag flips only after a successful mount, so a failed injection
	// leaves the next cycle free to retry.
	s.mu.Lock()
	s.hasShownNotice = true
	s.handle = h
	s.mu.Unlock()

	s.log.Info("update notice shown",
		logx.String("version", version), logx.String("locale", locale))
}

// dismissCurrent removes the mounted notice, clears the shown flag, and
// persists the dismissal keyed by the most recently observed version.
func (s *Session) dismissCurrent() {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.hasShownNotice = false
	version := s.latestVersion
	s.mu.Unlock()

	if h != nil {
		if err := h.Remove(); err != nil {
			s.log.Warn("failed to remove update notice", logx.Err(err))
		}
	}

	if s.store == nil || version == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.store.Record(ctx, version); err != nil {
		s.log.Warn("dismissal not persisted", logx.String("version", version), logx.Err(err))
	}
}

// Visible signals that the page became visible. Shares one debounce window
// with Focused, so rapid visibility+focus flapping yields at most one check
// per window.
func (s *Session) Visible() { s.debounce.Trigger() }

// Focused signals that the page gained focus.
func (s *Session) Focused() { s.debounce.Trigger() }

// ResourceError signals that a page resource failed to load. A failing
// script tag means the deployed assets may be stale, so it forces an
// immediate, undebounced check; other tags are ignored.
func (s *Session) ResourceError(tag string) {
	if strings.EqualFold(strings.TrimSpace(tag), ResourceTagScript) {
		s.check(s.sup.Context())
	}
}

// CheckNow forces an immediate check cycle, bypassing the debounce.
func (s *Session) CheckNow() { s.check(s.sup.Context()) }

// SetLocale switches the locale used for subsequent notifications.
func (s *Session) SetLocale(locale string) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return
	}
	s.mu.Lock()
	s.currentLocale = locale
	s.localeSet = true
	s.mu.Unlock()
}

// Locale returns the active locale tag. Before the first notification (and
// absent SetLocale) it reports the configured default.
func (s *Session) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.localeSet {
		return s.currentLocale
	}
	return s.defaultLocale()
}

// LatestVersion returns the most recently observed artifact version.
func (s *Session) LatestVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestVersion
}

// Events subscribes to the session's bus (update-detected events).
func (s *Session) Events(buffer int) (<-chan eventbus.Event, func()) {
	return s.bus.Subscribe(buffer)
}

// Shown reports whether a notice is currently displayed.
func (s *Session) Shown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasShownNotice
}

func (s *Session) defaultLocale() string {
	if l := strings.TrimSpace(s.opts.Locale); l != "" {
		return l
	}
	return i18n.DefaultLocale
}

// Close stops polling and removes any mounted notice.
func (s *Session) Close() error {
	err := s.sup.Stop(5 * time.Second)

	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.hasShownNotice = false
	s.mu.Unlock()
	if h != nil {
		_ = h.Remove()
	}
	return err
}
