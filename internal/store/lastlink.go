package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goldlure/blogwatch/internal/track"
)

// LastLinkStore keeps a single row per source holding the canonical link
// of the newest post seen on the last non-empty fetch.
type LastLinkStore struct {
	db *sql.DB
}

func OpenLastLink(path string) (*LastLinkStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &LastLinkStore{db: db}, nil
}

func (s *LastLinkStore) Load(ctx context.Context) (map[string]track.Position, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, "SELECT source, link FROM positions")
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	defer rows.Close()

	positions := make(map[string]track.Position)
	for rows.Next() {
		var source, link string
		if err := rows.Scan(&source, &link); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions[source] = track.LastLink(link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return positions, nil
}

func (s *LastLinkStore) Save(ctx context.Context, updated map[string]track.Position) error {
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
		link, ok := pos.(track.LastLink)
		if !ok {
			_ = tx.Rollback()
			return fmt.Errorf("source %s: position mode %s, store tracks %s", source, pos.Mode(), track.ModeLastLink)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO positions(source, link, updated_at) VALUES(?, ?, ?)
			 ON CONFLICT(source) DO UPDATE SET link = excluded.link, updated_at = excluded.updated_at`,
			source, string(link), now,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save position: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit positions: %w", err)
	}
	return nil
}

func (s *LastLinkStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
