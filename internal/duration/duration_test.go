package duration

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"30m", 30 * time.Minute, false},
		{"1h", time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"2days", 48 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"1mo", 30 * 24 * time.Hour, false},
		{"1y", 365 * 24 * time.Hour, false},
		{"0d", 0, false},
		{"-1d", 0, true},
		{"5x", 0, true},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDuration(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSinceAndUntil(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	since, err := Since("1w", now)
	if err != nil {
		t.Fatalf("Since() error = %v", err)
	}
	if want := now.Add(-7 * 24 * time.Hour); !since.Equal(want) {
		t.Errorf("Since() = %v, want %v", since, want)
	}

	until, err := Until("2h", now)
	if err != nil {
		t.Fatalf("Until() error = %v", err)
	}
	if want := now.Add(2 * time.Hour); !until.Equal(want) {
		t.Errorf("Until() = %v, want %v", until, want)
	}

	if _, err := Until("soon", now); err == nil {
		t.Error("Until(soon) error = nil")
	}
}
