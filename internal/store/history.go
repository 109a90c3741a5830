package store

import (
	"context"
	"fmt"

	"github.com/goldlure/blogwatch/internal/blog"
	"github.com/goldlure/blogwatch/internal/message"
	"github.com/goldlure/blogwatch/internal/track"
)

// History supplies the text of previously sent notifications. Order does
// not matter; the latest date per source wins.
type History interface {
	Entries(ctx context.Context) ([]string, error)
}

// HistoryStore reconstructs last-date positions from the notifications
// themselves: each sent message carries its source name and post date, so
// the newest date found per source is that source's position. Save is a
// no-op because sending the notification is the state write. A failed
// history read aborts the load rather than reporting an empty state,
// since an empty state would re-notify the entire listing.
type HistoryStore struct {
	history History
}

func NewHistory(history History) *HistoryStore {
	return &HistoryStore{history: history}
}

func (s *HistoryStore) Load(ctx context.Context) (map[string]track.Position, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	entries, err := s.history.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read notification history: %w", err)
	}

	positions := make(map[string]track.Position)
	for _, text := range entries {
		source, date, ok := message.Extract(text)
		if !ok || date.IsZero() {
			continue
		}
		if cur, exists := positions[source].(track.LastDate); !exists || date.After(blog.Date(cur)) {
			positions[source] = track.LastDate(date)
		}
	}
	return positions, nil
}

func (s *HistoryStore) Save(ctx context.Context, updated map[string]track.Position) error {
	return nil
}

func (s *HistoryStore) Close() error {
	return nil
}
