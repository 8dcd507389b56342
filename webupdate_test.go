package webupdate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheckUpdateControlSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version":"v2"}`)
	}))
	defer srv.Close()

	ResetDefault()
	anchor := NewMemoryAnchor()
	s, err := CheckUpdate(context.Background(), Options{
		Base:          srv.URL,
		BuiltVersion:  "v1",
		CheckInterval: time.Hour,
		Anchor:        anchor,
		HTTP:          srv.Client(),
	})
	if err != nil {
		t.Fatalf("CheckUpdate: %v", err)
	}
	defer s.Close()

	if Default() != s {
		t.Fatal("first session should become the default")
	}

	// Runtime locale switch routes to the poller's tracked locale.
	SetLocale("en_US")
	if Locale() != "en_US" {
		t.Fatalf("Locale() = %q", Locale())
	}
	if s.Locale() != "en_US" {
		t.Fatalf("session locale = %q", s.Locale())
	}

	deadline := time.Now().Add(3 * time.Second)
	for anchor.Current() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if anchor.Current() == nil {
		t.Fatal("expected a mounted notice")
	}
	if got := anchor.Current().ButtonText; got != "refresh" {
		t.Fatalf("notice should render in en_US, button = %q", got)
	}
}

func TestSetLocaleWithoutSession(t *testing.T) {
	ResetDefault()
	SetLocale("en_US") // must not panic
	if Locale() != "" {
		t.Fatalf("Locale() = %q, want empty", Locale())
	}
}
