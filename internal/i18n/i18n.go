// Package i18n resolves display text for the update notification.
//
// Lookup order is user overrides, then the built-in preset table, then the
// default locale's preset. An unknown locale tag at any tier falls through to
// the next one; lookups never fail loudly.
package i18n

// Table maps locale tag -> text key -> display text.
type Table map[string]map[string]string

// Text keys used by the default notification markup.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyButton      = "buttonText"
	KeyDismiss     = "dismissButtonText"
)

// DefaultLocale is the final fallback tier.
const DefaultLocale = "zh_CN"

var presets = Table{
	"zh_CN": {
		KeyTitle:       "发现新版本",
		KeyDescription: "网页更新啦！请刷新页面，获取最新版本",
		KeyButton:      "刷新",
		KeyDismiss:     "忽略",
	},
	"zh_TW": {
		KeyTitle:       "發現新版本",
		KeyDescription: "網頁更新啦！請刷新頁面，獲取最新版本",
		KeyButton:      "刷新",
		KeyDismiss:     "忽略",
	},
	"en_US": {
		KeyTitle:       "System Update",
		KeyDescription: "System update, please refresh the page",
		KeyButton:      "refresh",
		KeyDismiss:     "dismiss",
	},
}

// Resolve returns the text for key in the given locale.
//
// Precedence: overrides[locale][key], then presets[locale][key], then
// presets[DefaultLocale][key]. Returns "" only when every tier misses, which
// cannot happen for the well-known keys above.
func Resolve(locale, key string, overrides Table) string {
	if v, ok := lookup(overrides, locale, key); ok {
		return v
	}
	if v, ok := lookup(presets, locale, key); ok {
		return v
	}
	if v, ok := lookup(presets, DefaultLocale, key); ok {
		return v
	}
	return ""
}

// Known reports whether the locale has a built-in preset table.
func Known(locale string) bool {
	_, ok := presets[locale]
	return ok
}

func lookup(t Table, locale, key string) (string, bool) {
	if t == nil {
		return "", false
	}
	m, ok := t[locale]
	if !ok {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}
