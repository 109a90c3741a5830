package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Journal is an append-only JSONL file recording every notification sent.
// Besides being an audit log, it backs last-date tracking: positions are
// reconstructed from the source name and date inside each message.
type Journal struct {
	path string
	mu   sync.Mutex
}

func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

type journalEntry struct {
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Append records one sent message.
func (j *Journal) Append(text string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	dir := filepath.Dir(j.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(journalEntry{Text: text, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	return nil
}

// Entries returns the text of every journaled message, oldest first. A
// missing file is an empty journal. Lines that fail to parse are skipped
// so one truncated write cannot poison the whole history.
func (j *Journal) Entries(ctx context.Context) ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry journalEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			slog.Warn("skipping malformed journal line", "path", j.path, "error", err)
			continue
		}
		texts = append(texts, entry.Text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return texts, nil
}
