package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps the ledger as a single JSON array on disk. A process-wide
// mutex makes it a single-writer log: sequence assignment and the append
// happen under one critical section, so two concurrent LogEvent callers in
// the same process cannot read the same length and mint duplicate ids.
// Writes go through a temp file and atomic rename so a crash never leaves
// a truncated ledger behind.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) All(ctx context.Context) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Append(ctx context.Context, ev Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		return Event{}, err
	}

	now := s.now()
	if ev.EventID == "" {
		ev.EventID = FormatEventID(now, len(history)+1)
	}
	if ev.Date == "" {
		ev.Date = now.Format("2006-01-02")
	}
	if ev.LoggedAt.IsZero() {
		ev.LoggedAt = now
	}

	history = append(history, ev)
	if err := s.save(history); err != nil {
		return ev, err
	}
	return ev, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() ([]Event, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(data) == 0 {
		return []Event{}, nil
	}
	var history []Event
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("corrupt ledger file %s: %w", s.path, err)
	}
	return history, nil
}

func (s *FileStore) save(history []Event) error {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}
