package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spiffcs/focus/internal/focus"
	"github.com/spiffcs/focus/internal/model"
)

func TestAppendAndRecent(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreWithPath(filepath.Join(dir, "stats.jsonl"))

	// Empty store returns nil
	got := s.Recent(10)
	if len(got) != 0 {
		t.Fatalf("expected 0 records, got %d", len(got))
	}

	// Append a snapshot
	snap := Snapshot{
		Timestamp: time.Now(),
		Total:     42,
		Groups:    map[focus.Group]int{focus.GroupBlocked: 30, focus.GroupDraft: 12},
	}
	if err := s.Append(snap); err != nil {
		t.Fatal(err)
	}

	got = s.Recent(10)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Total != 42 || got[0].Groups[focus.GroupBlocked] != 30 {
		t.Fatalf("expected Total 42 with 30 blocked, got %+v", got[0])
	}

	// Append another
	snap2 := Snapshot{
		Timestamp: time.Now(),
		Total:     50,
	}
	if err := s.Append(snap2); err != nil {
		t.Fatal(err)
	}

	got = s.Recent(10)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[1].Total != 50 {
		t.Fatalf("expected Total 50, got %d", got[1].Total)
	}
}

func TestRecentLimitsResults(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreWithPath(filepath.Join(dir, "stats.jsonl"))

	for i := range 10 {
		if err := s.Append(Snapshot{Total: i}); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Recent(3)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// Should be the last 3 entries
	if got[0].Total != 7 {
		t.Fatalf("expected Total 7, got %d", got[0].Total)
	}
	if got[2].Total != 9 {
		t.Fatalf("expected Total 9, got %d", got[2].Total)
	}
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreWithPath(filepath.Join(dir, "stats.jsonl"))

	// Write maxRecords + 5 entries
	for i := range maxRecords + 5 {
		if err := s.Append(Snapshot{Total: i}); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Recent(maxRecords + 100)
	if len(got) != maxRecords {
		t.Fatalf("expected %d records after prune, got %d", maxRecords, len(got))
	}
	// First record should be the 6th one written (0-indexed: 5)
	if got[0].Total != 5 {
		t.Fatalf("expected first record Total 5, got %d", got[0].Total)
	}
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.jsonl")

	// Write with one store instance
	s1 := NewStoreWithPath(path)
	if err := s1.Append(Snapshot{Total: 99, MedianAgeHours: 48.5}); err != nil {
		t.Fatal(err)
	}

	// Read with a new store instance
	s2 := NewStoreWithPath(path)
	got := s2.Recent(10)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Total != 99 {
		t.Fatalf("expected Total 99, got %d", got[0].Total)
	}
	if got[0].MedianAgeHours != 48.5 {
		t.Fatalf("expected MedianAgeHours 48.5, got %f", got[0].MedianAgeHours)
	}
}

func TestMissingFile(t *testing.T) {
	s := NewStoreWithPath(filepath.Join(t.TempDir(), "nonexistent", "stats.jsonl"))

	// Recent on non-existent file returns nil
	got := s.Recent(10)
	if len(got) != 0 {
		t.Fatalf("expected 0 records, got %d", len(got))
	}
}

func TestMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.jsonl")

	// Write some valid and invalid lines
	content := `{"ts":"2024-01-01T00:00:00Z","total":10}
not json at all
{"ts":"2024-01-02T00:00:00Z","total":20}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStoreWithPath(path)
	got := s.Recent(10)
	if len(got) != 2 {
		t.Fatalf("expected 2 valid records, got %d", len(got))
	}
	if got[0].Total != 10 {
		t.Fatalf("expected Total 10, got %d", got[0].Total)
	}
	if got[1].Total != 20 {
		t.Fatalf("expected Total 20, got %d", got[1].Total)
	}
}

func TestFromEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []model.Item{
		{Provider: "github", Repository: "o/r", Number: 1, Category: model.CategoryMergeable, UpdatedAt: at.Add(-2 * time.Hour)},
		{Provider: "github", Repository: "o/r", Number: 2, Category: model.CategoryFailedChecks, UpdatedAt: at.Add(-4 * time.Hour)},
		{Provider: "gitlab", Repository: "g/p", Number: 3, Category: model.CategoryConflicts, UpdatedAt: at.Add(-10 * time.Hour)},
		{Provider: "gitlab", Repository: "g/p", Number: 4, Category: model.CategoryDraft, UpdatedAt: at.Add(-20 * time.Hour)},
		{Provider: "github", Repository: "o/r", Number: 5, Category: "unknown"},
	}

	snap := FromEvent(focus.RefreshEvent{Items: items, Force: true, At: at})

	if snap.Total != 4 {
		t.Errorf("Total = %d, want 4", snap.Total)
	}
	if snap.Groups[focus.GroupBlocked] != 2 || snap.Groups[focus.GroupMergeable] != 1 || snap.Groups[focus.GroupDraft] != 1 {
		t.Errorf("Groups = %v", snap.Groups)
	}
	if _, ok := snap.Groups[focus.GroupNeedsReview]; ok {
		t.Error("empty group recorded")
	}
	if snap.Providers["github"] != 2 || snap.Providers["gitlab"] != 2 {
		t.Errorf("Providers = %v", snap.Providers)
	}
	if snap.MedianAgeHours != 7 {
		t.Errorf("MedianAgeHours = %v, want 7", snap.MedianAgeHours)
	}
	if !snap.Forced || !snap.Timestamp.Equal(at) {
		t.Errorf("Forced, Timestamp = %v, %v", snap.Forced, snap.Timestamp)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"odd", []float64{5, 1, 3}, 3},
		{"even", []float64{4, 1, 3, 2}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.values); got != tt.want {
				t.Errorf("median() = %v, want %v", got, tt.want)
			}
		})
	}
}
