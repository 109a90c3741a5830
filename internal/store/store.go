// Package store persists per-source tracking positions between watch
// cycles. SQLite files back the seen-set and last-link modes; last-date
// mode reads positions straight out of the notification history and
// needs no database at all.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goldlure/blogwatch/internal/track"
)

// Store loads and saves tracking positions. Each tracking mode has its own
// implementation; the watch cycle only ever talks to this interface.
type Store interface {
	// Load returns the stored position per source name. Sources that were
	// never saved have no key, which the watcher treats as a first run.
	Load(ctx context.Context) (map[string]track.Position, error)
	// Save overwrites the position of every source present in updated.
	// Sources absent from the map keep whatever position they had.
	Save(ctx context.Context, updated map[string]track.Position) error
	Close() error
}

// Open returns the store implementation for the given tracking mode. The
// history argument is only consulted in last-date mode, where sent
// notifications are the state medium.
func Open(mode track.Mode, path string, history History) (Store, error) {
	switch mode {
	case track.ModeSeenSet:
		return OpenSeenSet(path)
	case track.ModeLastLink:
		return OpenLastLink(path)
	case track.ModeLastDate:
		if history == nil {
			return nil, errors.New("last-date tracking needs a notification history")
		}
		return NewHistory(history), nil
	}
	return nil, fmt.Errorf("unknown tracking mode %q", mode)
}

// openDB opens the SQLite file at path, creating parent directories and
// applying the schema. A file that turns out not to be a database is moved
// to "<path>.broken" and replaced with a fresh one, so tracking restarts
// from a first run instead of wedging every cycle.
func openDB(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("state path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := openAndMigrate(path)
	if err == nil {
		return db, nil
	}
	if !strings.Contains(err.Error(), "not a database") {
		return nil, err
	}

	broken := path + ".broken"
	slog.Warn("state database unreadable, moving it aside", "path", path, "backup", broken)
	if renameErr := os.Rename(path, broken); renameErr != nil {
		return nil, fmt.Errorf("move unreadable state database: %w", renameErr)
	}
	return openAndMigrate(path)
}

func openAndMigrate(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
