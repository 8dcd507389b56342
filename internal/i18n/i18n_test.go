package i18n

import "testing"

func TestResolvePrecedence(t *testing.T) {
	t.Parallel()
	overrides := Table{
		"en_US": {KeyTitle: "Fresh build available"},
	}

	tests := []struct {
		name   string
		locale string
		key    string
		want   string
	}{
		{name: "override wins", locale: "en_US", key: KeyTitle, want: "Fresh build available"},
		{name: "preset when override misses key", locale: "en_US", key: KeyButton, want: "refresh"},
		{name: "unknown locale falls to default", locale: "fr_FR", key: KeyTitle, want: "发现新版本"},
		{name: "preset locale without override", locale: "zh_TW", key: KeyDismiss, want: "忽略"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.locale, tt.key, overrides); got != tt.want {
				t.Fatalf("Resolve(%q, %q) = %q, want %q", tt.locale, tt.key, got, tt.want)
			}
		})
	}
}

func TestResolveNilOverrides(t *testing.T) {
	t.Parallel()
	if got := Resolve("zh_CN", KeyTitle, nil); got != "发现新版本" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := Resolve("nope", "not-a-key", nil); got != "" {
		t.Fatalf("expected empty result for unknown key, got %q", got)
	}
}

func TestKnown(t *testing.T) {
	t.Parallel()
	if !Known("en_US") {
		t.Fatal("en_US should be a preset locale")
	}
	if Known("eo") {
		t.Fatal("eo should not be a preset locale")
	}
}
