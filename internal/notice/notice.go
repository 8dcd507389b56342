// Package notice builds the update notification and mounts it under an
// anchor. The rendered markup uses stable class names so host stylesheets can
// target the content and controls without touching this package.
package notice

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"strings"

	"github.com/GreatAuk/webupdate/internal/i18n"
)

// Well-known class names, the styling contract with host pages.
const (
	AnchorClass        = "web-update-notice-anchor"
	NoticeClass        = "web-update-notice"
	ContentClass       = "web-update-notice-content"
	RefreshButtonClass = "web-update-notice-refresh-btn"
	DismissButtonClass = "web-update-notice-dismiss-btn"
)

var (
	ErrAnchorOccupied = errors.New("notice: anchor already holds a notice")
	ErrNoAnchor       = errors.New("notice: anchor target missing")
)

// Props are explicit per-field text overrides. A non-empty field wins over
// any locale lookup.
type Props struct {
	Title             string `json:"title,omitempty"`
	Description       string `json:"description,omitempty"`
	ButtonText        string `json:"buttonText,omitempty"`
	DismissButtonText string `json:"dismissButtonText,omitempty"`
}

// Options controls how a notice is composed.
type Options struct {
	Locale      string
	LocaleData  i18n.Table
	Props       Props
	CustomHTML  string
	HideDismiss bool
}

// Notice is a fully composed notification, ready to mount.
type Notice struct {
	Version     string
	Title       string
	Description string
	ButtonText  string
	DismissText string
	CustomHTML  string
	HideDismiss bool
}

// Render composes the notice for a version. Each text field resolves by
// precedence: explicit Props override, then locale lookup (user locale data
// over presets), then the preset default locale.
func Render(version string, opts Options) *Notice {
	n := &Notice{
		Version:     version,
		CustomHTML:  opts.CustomHTML,
		HideDismiss: opts.HideDismiss,
	}
	if strings.TrimSpace(opts.CustomHTML) != "" {
		// Host supplies the full body and assumes responsibility for
		// structure and controls.
		return n
	}

	n.Title = pick(opts.Props.Title, opts, i18n.KeyTitle)
	n.Description = pick(opts.Props.Description, opts, i18n.KeyDescription)
	n.ButtonText = pick(opts.Props.ButtonText, opts, i18n.KeyButton)
	n.DismissText = pick(opts.Props.DismissButtonText, opts, i18n.KeyDismiss)
	return n
}

func pick(override string, opts Options, key string) string {
	if override != "" {
		return override
	}
	return i18n.Resolve(opts.Locale, key, opts.LocaleData)
}

var bodyTmpl = template.Must(template.New("notice").Parse(
	`<div class="` + NoticeClass + `">
{{- if .Custom}}{{.Custom}}{{else}}
  <div class="` + ContentClass + `" data-version="{{.Version}}">
    <div class="` + ContentClass + `-title">{{.Title}}</div>
    <div class="` + ContentClass + `-desc">{{.Description}}</div>
    <div class="` + ContentClass + `-tools">
      <a class="` + RefreshButtonClass + `">{{.ButtonText}}</a>
{{- if not .HideDismiss}}
      <a class="` + DismissButtonClass + `">{{.DismissText}}</a>
{{- end}}
    </div>
  </div>
{{- end}}
</div>
`))

// HTML renders the notice body as an injectable fragment. Composed fields are
// escaped; CustomHTML is passed through verbatim.
func (n *Notice) HTML() string {
	var buf bytes.Buffer
	err := bodyTmpl.Execute(&buf, struct {
		*Notice
		Custom template.HTML
	}{Notice: n, Custom: template.HTML(n.CustomHTML)})
	if err != nil {
		// Template and data are both local; execution cannot fail in
		// practice. Fall back to an empty fragment.
		return ""
	}
	return buf.String()
}

// Controls are the actions bound to the notice's interactive elements.
// The mounting side supplies them; Handle invocations call straight through.
type Controls struct {
	OnRefresh func()
	OnDismiss func()
}

// Handle is a mounted notice. Refresh and Dismiss correspond to the user
// activating the matching control; Remove detaches the notice from the
// anchor.
type Handle interface {
	Notice() *Notice
	Refresh()
	Dismiss()
	Remove() error
}

// Anchor is the designated mount point for notices. Exactly one notice can
// be mounted at a time; Mount fails with ErrAnchorOccupied otherwise.
type Anchor interface {
	Mount(ctx context.Context, n *Notice, c Controls) (Handle, error)
}
