package captions_test

import (
	"testing"

	"velociplayer/internal/captions"
	"velociplayer/internal/rational"
)

func TestLocateReturnsCachedCaptionWhenStillActive(t *testing.T) {
	track, err := captions.Decode(roundTripSRT, captions.BuildOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	cached := captions.Search(track, sec(1.2))
	if cached == nil {
		t.Fatal("expected a caption at 1.2s")
	}
	if got := captions.Locate(track, sec(1.8), cached); got != cached {
		t.Fatalf("expected the cached pointer back, got %#v", got)
	}
	// Cached caption from another track still wins while it covers t.
	if got := captions.Locate(nil, sec(1.5), cached); got != cached {
		t.Fatalf("expected cached caption without a track, got %#v", got)
	}
	moved := captions.Locate(track, sec(5.5), cached)
	if moved == nil || moved.TextOrEmpty() != "World" {
		t.Fatalf("expected World at 5.5s, got %#v", moved)
	}
}

func TestSearchBoundaries(t *testing.T) {
	track, err := captions.Decode(roundTripSRT, captions.BuildOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tests := []struct {
		name   string
		at     rational.Time
		want   string
		filler bool
		none   bool
	}{
		{name: "zero", at: rational.Zero, filler: true},
		{name: "start of caption", at: sec(1), want: "Hello"},
		{name: "just before end of track", at: sec(6.4999), want: "World"},
		{name: "end of track inclusive", at: sec(6.5), want: "World"},
		{name: "just past end", at: rational.New(65001, 10000), none: true},
		{name: "other timescale", at: rational.New(3, 2), want: "Hello"},
		{name: "negative", at: rational.New(-1, 1000), none: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := captions.Search(track, tt.at)
			if tt.none {
				if got != nil {
					t.Fatalf("expected nil, got %#v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a caption, got nil")
			}
			if got.IsFiller() != tt.filler {
				t.Fatalf("filler=%v, want %v", got.IsFiller(), tt.filler)
			}
			if !tt.filler && got.TextOrEmpty() != tt.want {
				t.Fatalf("text %q, want %q", got.TextOrEmpty(), tt.want)
			}
		})
	}
}

func TestSearchNilTrack(t *testing.T) {
	if got := captions.Search(nil, sec(1)); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
	if got := captions.Locate(nil, sec(1), nil); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestSearchMatchesLinearScan(t *testing.T) {
	var entries []captions.Entry
	for i := 0; i < 500; i++ {
		start := float64(i) * 3
		entries = append(entries, entry(i+1, start+0.5, start+2, "c"))
	}
	track, err := captions.BuildTrack(entries, captions.BuildOptions{})
	if err != nil {
		t.Fatalf("BuildTrack: %v", err)
	}
	all := track.Captions()
	for ms := int64(0); ms <= 1_500_000; ms += 137 {
		at := rational.FromMilliseconds(ms, rational.DefaultTimescale)
		var want *captions.Caption
		for i := range all {
			if all[i].DisplayRange.Contains(at) {
				want = &all[i]
				break
			}
		}
		got := captions.Search(track, at)
		if want == nil {
			if got != nil {
				t.Fatalf("at %v: expected nil, got %#v", at, got)
			}
			continue
		}
		if got == nil || !got.DisplayRange.Contains(at) {
			t.Fatalf("at %v: got %#v, want a caption containing it", at, got)
		}
	}
}
