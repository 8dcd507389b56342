//go:build sqlite
// +build sqlite

package dismiss

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("dismiss: sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) IsDismissed(ctx context.Context, version string) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrDisabled
	}
	version = strings.TrimSpace(version)
	if version == "" {
		return false, nil
	}
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM dismissal WHERE key = ?`, Key(version)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *sqliteStore) Record(ctx context.Context, version string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	version = strings.TrimSpace(version)
	if version == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dismissal(key, value, at) VALUES(?, 'true', ?)
		 ON CONFLICT(key) DO UPDATE SET at=excluded.at`,
		Key(version), time.Now().Format(time.RFC3339Nano),
	)
	return err
}
