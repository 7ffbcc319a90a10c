// Package snooze hides items from focus until they change or a snooze
// period ends.
package snooze

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spiffcs/focus/internal/log"
	"github.com/spiffcs/focus/internal/model"
)

// Entry records a snoozed item.
type Entry struct {
	Key string `json:"-"`
	// UpdatedAt is the item's last activity when it was snoozed. Newer
	// activity wakes the item.
	UpdatedAt time.Time `json:"updatedAt"`
	SnoozedAt time.Time `json:"snoozedAt"`
	// Until ends the snooze early; zero means until the next activity.
	Until time.Time `json:"until,omitzero"`
	Title string    `json:"title,omitempty"`
}

// Store manages persistence of snoozed items
type Store struct {
	path    string
	entries map[string]Entry
	mu      sync.RWMutex
	now     func() time.Time
}

// NewStore opens the store under the user cache directory.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(cacheDir, "focus", "snoozed.json"))
}

// Open opens the store at path, starting empty when the file is missing
// or unreadable.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create snooze directory: %w", err)
	}

	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	if err := s.load(); err != nil {
		log.Debug("could not load snooze store, starting fresh", "error", err)
		s.entries = make(map[string]Entry)
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &s.entries)
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Snooze hides item until its next activity or, if until is non-zero,
// until that time.
func (s *Store) Snooze(item model.Item, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[item.Key()] = Entry{
		UpdatedAt: item.UpdatedAt,
		SnoozedAt: s.now(),
		Until:     until,
		Title:     item.Title,
	}
	return s.save()
}

// Unsnooze removes key from the store. Unknown keys are not an error.
func (s *Store) Unsnooze(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.save()
}

// ShouldShow returns true unless the item is snoozed with no activity
// since and the snooze has not ended.
func (s *Store) ShouldShow(item model.Item) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[item.Key()]
	if !ok {
		return true
	}
	if !entry.Until.IsZero() && !s.now().Before(entry.Until) {
		return true
	}
	return item.UpdatedAt.After(entry.UpdatedAt)
}

// Filter returns the items that should be shown.
func (s *Store) Filter(items []model.Item) []model.Item {
	return slices.DeleteFunc(slices.Clone(items), func(item model.Item) bool {
		return !s.ShouldShow(item)
	})
}

// IsSnoozed returns true if key has an entry.
func (s *Store) IsSnoozed(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[key]
	return ok
}

// Count returns the number of snoozed items
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// List returns the entries ordered by key.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for key, e := range s.entries {
		e.Key = key
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	return out
}
