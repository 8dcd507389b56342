// Package artifact defines the version artifact published alongside the site
// and the two sides that touch it: the build-time producer (stamp) and the
// polling client (fetch).
package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Well-known artifact location relative to the served output root.
const (
	DirName  = "web_update_notice"
	FileName = "web_version.json"
)

// Manifest is the artifact payload. Version is an opaque string; equality is
// the only comparison ever applied to it.
type Manifest struct {
	Version string `json:"version"`
}

// Read loads a manifest from a local file (the stamp output inside a
// deployed directory).
func Read(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Write publishes the manifest under outDir/DirName/FileName.
// The write is atomic (tmp file + rename) so a concurrent fetch never
// observes a partial file.
func Write(outDir string, m Manifest) error {
	dir := filepath.Join(outDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	path := filepath.Join(dir, FileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
