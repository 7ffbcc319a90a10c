// Package stats keeps a history of refresh snapshots so the focus load can
// be compared over time.
package stats

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/log"
)

// maxRecords is the maximum number of snapshots retained in the store.
const maxRecords = 1000

// Snapshot captures the group sizes of one published refresh.
type Snapshot struct {
	Timestamp      time.Time           `json:"ts"`
	Total          int                 `json:"total"`
	Groups         map[focus.Group]int `json:"groups,omitempty"`
	Providers      map[string]int      `json:"providers,omitempty"`
	MedianAgeHours float64             `json:"medianAgeH"`
	Forced         bool                `json:"forced,omitempty"`
}

// FromEvent summarizes a refresh event. Ages are measured from the event
// time.
func FromEvent(e focus.RefreshEvent) Snapshot {
	g := focus.GroupItems(e.Items)
	snap := Snapshot{
		Timestamp: e.At,
		Total:     g.Len(),
		Groups:    make(map[focus.Group]int),
		Providers: make(map[string]int),
		Forced:    e.Force,
	}

	var ages []float64
	for _, group := range focus.AllGroups {
		items := g.Get(group)
		if len(items) == 0 {
			continue
		}
		snap.Groups[group] = len(items)
		for _, item := range items {
			snap.Providers[item.Provider]++
			if !item.UpdatedAt.IsZero() {
				ages = append(ages, e.At.Sub(item.UpdatedAt).Hours())
			}
		}
	}
	snap.MedianAgeHours = median(ages)
	return snap
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	slices.Sort(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}

// Store manages persistence of snapshots as JSON Lines.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store at $XDG_CACHE_HOME/focus/stats.jsonl.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cacheDir, "focus")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &Store{path: filepath.Join(dir, "stats.jsonl")}, nil
}

// NewStoreWithPath creates a store at the given path.
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Append adds a snapshot. The file is rewritten only when it has grown
// past maxRecords; otherwise the line is appended.
func (s *Store) Append(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		log.Debug("could not read stats, starting fresh", "error", err)
		return s.writeAll([]Snapshot{snap})
	}

	if len(records) < maxRecords {
		return s.appendLine(snap)
	}
	records = append(records, snap)
	return s.writeAll(records[len(records)-maxRecords:])
}

// Recent returns the last n snapshots (or fewer if not enough exist),
// oldest first.
func (s *Store) Recent(n int) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil
	}

	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

func (s *Store) readAll() ([]Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []Snapshot
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			continue // skip malformed lines
		}
		records = append(records, snap)
	}
	return records, scanner.Err()
}

func (s *Store) appendLine(snap Snapshot) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(snap); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeAll replaces the file atomically.
func (s *Store) writeAll(records []Snapshot) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.path)
}
