package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchOK(t *testing.T) {
	t.Parallel()
	var gotPath, gotBuster string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBuster = r.URL.Query().Get("t")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"abc123"}`))
	}))
	defer srv.Close()

	c := &Client{Base: srv.URL, HTTP: srv.Client()}
	m, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if m.Version != "abc123" {
		t.Fatalf("Version = %q, want abc123", m.Version)
	}
	if gotPath != "/"+DirName+"/"+FileName {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotBuster == "" {
		t.Fatal("expected a cache-busting query parameter")
	}
}

func TestFetchFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>nope</html>"))
			},
		},
		{
			name: "empty version",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"version":""}`))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := &Client{Base: srv.URL, HTTP: srv.Client()}
			if _, err := c.Fetch(context.Background()); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestFetchEmptyBase(t *testing.T) {
	t.Parallel()
	c := &Client{}
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
