package domain

import (
	"testing"
	"time"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ts       time.Time
		expected string
	}{
		{"seconds", now.Add(-30 * time.Second), "Just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-48 * time.Hour), "2025-03-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAge(tt.ts, now); got != tt.expected {
				t.Errorf("FormatAge() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestVideoInfoFilters(t *testing.T) {
	info := &VideoInfo{Medias: []MediaDescriptor{
		{URL: "v1", Kind: KindVideo},
		{URL: "v2", Kind: KindVideo},
		{URL: "a1", Kind: KindAudio},
		{URL: "v3", Kind: KindVideo},
		{URL: "a2", Kind: KindAudio},
	}}

	if got := info.Videos(2); len(got) != 2 || got[1].URL != "v2" {
		t.Errorf("Videos(2) = %+v", got)
	}
	if got := info.Audios(1); len(got) != 1 || got[0].URL != "a1" {
		t.Errorf("Audios(1) = %+v", got)
	}
	if got := info.Videos(0); len(got) != 3 {
		t.Errorf("Videos(0) returned %d entries, want 3", len(got))
	}
}
