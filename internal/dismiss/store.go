package dismiss

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

var ErrDisabled = errors.New("dismissal store disabled")

// KeyPrefix namespaces dismissal records in the underlying key-value
// substrate. The full key is KeyPrefix + version.
const KeyPrefix = "web_update_dismissed_"

// Config configures the dismissal store.
//
// Driver values:
//   - "file": dependency-free file backend (snapshot + jsonl journal)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", the store is disabled: every version reads as
// not dismissed and Record is a no-op error the caller logs.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the persistence API consumed by the poller.
type Store interface {
	// IsDismissed reports whether a dismissal record exists for version.
	IsDismissed(ctx context.Context, version string) (bool, error)
	// Record writes a dismissal record for version, overwriting silently
	// if one is already present.
	Record(ctx context.Context, version string) error
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if the store is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown dismissal store driver: " + driver)
	}
}

// Key returns the persisted key for a version.
func Key(version string) string { return KeyPrefix + version }
