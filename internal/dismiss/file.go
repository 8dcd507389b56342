package dismiss

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.dismiss.snapshot.json (periodic snapshot)
//   - <prefix>.dismiss.journal.jsonl (append-only journal)
//
// The journal is periodically compacted into the snapshot. Dismissals are
// rare (one per deployed version a user ignores), so the compaction cadence
// is mostly about keeping restarts cheap.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	snapshotPath string
	journalFile  *os.File
	records      map[string]bool // full key (KeyPrefix + version) -> true

	writes int
}

type journalRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

const compactEvery = 64

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("dismiss: path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	snapPath := prefix + ".dismiss.snapshot.json"
	journalPath := prefix + ".dismiss.journal.jsonl"

	records := map[string]bool{}
	_ = loadSnapshot(snapPath, records)
	_ = replayJournal(journalPath, records)

	jf, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}

	return &fileStore{
		log:          log,
		snapshotPath: snapPath,
		journalFile:  jf,
		records:      records,
	}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return nil
	}
	err := s.journalFile.Close()
	s.journalFile = nil
	return err
}

func (s *fileStore) IsDismissed(ctx context.Context, version string) (bool, error) {
	_ = ctx
	version = strings.TrimSpace(version)
	if version == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[Key(version)], nil
}

func (s *fileStore) Record(ctx context.Context, version string) error {
	_ = ctx
	version = strings.TrimSpace(version)
	if version == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return errors.New("dismiss: journal closed")
	}
	key := Key(version)
	s.records[key] = true

	enc := json.NewEncoder(s.journalFile)
	if err := enc.Encode(journalRecord{Key: key, Value: "true"}); err != nil {
		return err
	}
	s.writes++
	if s.writes%compactEvery == 0 {
		// Best-effort compact.
		if err := s.compactLocked(); err != nil {
			s.log.Debug("dismiss compact failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) compactLocked() error {
	tmp := s.snapshotPath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(s.records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return err
	}
	// Truncate journal.
	if err := s.journalFile.Truncate(0); err != nil {
		return err
	}
	_, err = s.journalFile.Seek(0, 2)
	return err
}

func loadSnapshot(path string, out map[string]bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var m map[string]bool
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return err
	}
	for k, v := range m {
		if v {
			out[k] = true
		}
	}
	return nil
}

func replayJournal(path string, out map[string]bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r journalRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		if r.Key == "" || r.Value != "true" {
			continue
		}
		out[r.Key] = true
	}
	return sc.Err()
}
