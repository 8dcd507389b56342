package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

func TestWriteManifest(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := Write(dir, Manifest{Version: "v42"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, DirName, FileName))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.Version != "v42" {
		t.Fatalf("Version = %q, want v42", m.Version)
	}

	// Overwrite with a newer version.
	if err := Write(dir, Manifest{Version: "v43"}); err != nil {
		t.Fatalf("Write (again): %v", err)
	}
	b, _ = os.ReadFile(filepath.Join(dir, DirName, FileName))
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.Version != "v43" {
		t.Fatalf("Version = %q, want v43", m.Version)
	}
}

func TestResolveVersionTime(t *testing.T) {
	t.Parallel()
	v := ResolveVersion(VersionTime, logx.Nop())
	if _, err := strconv.ParseInt(v, 10, 64); err != nil {
		t.Fatalf("timestamp version is not an integer: %q", v)
	}
}

func TestResolveVersionPkg(t *testing.T) {
	t.Setenv("WEB_UPDATE_VERSION", "9.9.9")
	if v := ResolveVersion(VersionPkg, logx.Nop()); v != "9.9.9" {
		t.Fatalf("ResolveVersion(pkg) = %q, want 9.9.9", v)
	}
}

func TestResolveVersionPkgFallback(t *testing.T) {
	t.Setenv("WEB_UPDATE_VERSION", "")
	t.Setenv("npm_package_version", "")
	v := ResolveVersion(VersionPkg, logx.Nop())
	if _, err := strconv.ParseInt(v, 10, 64); err != nil {
		t.Fatalf("expected timestamp fallback, got %q", v)
	}
}

func TestResolveVersionUnknownMode(t *testing.T) {
	t.Parallel()
	v := ResolveVersion(VersionMode("bogus"), logx.Nop())
	if _, err := strconv.ParseInt(v, 10, 64); err != nil {
		t.Fatalf("expected timestamp fallback, got %q", v)
	}
}
