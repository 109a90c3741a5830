package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goldlure/blogwatch/internal/track"
)

// SeenSetStore keeps one row per (source, link) ever observed. Links are
// only ever added; a post dropping off the listing does not remove it.
type SeenSetStore struct {
	db *sql.DB
}

func OpenSeenSet(path string) (*SeenSetStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SeenSetStore{db: db}, nil
}

func (s *SeenSetStore) Load(ctx context.Context) (map[string]track.Position, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, "SELECT source, link FROM seen_links")
	if err != nil {
		return nil, fmt.Errorf("load seen links: %w", err)
	}
	defer rows.Close()

	positions := make(map[string]track.Position)
	for rows.Next() {
		var source, link string
		if err := rows.Scan(&source, &link); err != nil {
			return nil, fmt.Errorf("scan seen link: %w", err)
		}
		set, ok := positions[source].(track.SeenSet)
		if !ok {
			set = track.SeenSet{}
			positions[source] = set
		}
		set[link] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seen links: %w", err)
	}
	return positions, nil
}

func (s *SeenSetStore) Save(ctx context.Context, updated map[string]track.Position) error {
	if s == nil || s.db == nil {
		return errors.New("store is not initialized")
	}
	if len(updated) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	now := formatTime(time.Now())
	for source, pos := range updated {
		set, ok := pos.(track.SeenSet)
		if !ok {
			_ = tx.Rollback()
			return fmt.Errorf("source %s: position mode %s, store tracks %s", source, pos.Mode(), track.ModeSeenSet)
		}
		for link := range set {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO seen_links(source, link, first_seen) VALUES(?, ?, ?)",
				source, link, now,
			); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("save seen link: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seen links: %w", err)
	}
	return nil
}

func (s *SeenSetStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
