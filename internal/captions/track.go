package captions

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"velociplayer/internal/rational"
)

// Ordering selects how entries are arranged before gap filling.
type Ordering string

const (
	// OrderByID trusts declared ids, matching how players have always read SubRip.
	OrderByID Ordering = "id"
	// OrderByStart sorts by start time and treats ids as metadata.
	OrderByStart Ordering = "start"
	// OrderStrict sorts by id and rejects tracks whose starts then go backwards.
	OrderStrict Ordering = "strict"
)

// ParseOrdering maps a config value to an Ordering. Empty selects OrderByID.
func ParseOrdering(value string) (Ordering, error) {
	switch Ordering(strings.ToLower(strings.TrimSpace(value))) {
	case "", OrderByID:
		return OrderByID, nil
	case OrderByStart:
		return OrderByStart, nil
	case OrderStrict:
		return OrderStrict, nil
	default:
		return "", fmt.Errorf("unsupported caption ordering %q (use id, start, or strict)", value)
	}
}

// BuildOptions configures BuildTrack.
type BuildOptions struct {
	Ordering Ordering
}

// Track is an immutable, gap-filled caption sequence starting at zero.
type Track struct {
	captions []Caption
	real     int
	stats    ParseStats
}

// BuildTrack orders entries and inserts fillers so the track starts at zero
// and has no gaps between consecutive captions. Overlaps are kept as-is.
func BuildTrack(entries []Entry, opts BuildOptions) (*Track, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntriesParsed
	}

	ordered := slices.Clone(entries)
	switch opts.Ordering {
	case OrderByStart:
		slices.SortStableFunc(ordered, func(a, b Entry) int {
			if c := a.Start.Compare(b.Start); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	case "", OrderByID, OrderStrict:
		slices.SortStableFunc(ordered, func(a, b Entry) int {
			return cmp.Compare(a.ID, b.ID)
		})
	default:
		return nil, fmt.Errorf("unsupported caption ordering %q", opts.Ordering)
	}

	if opts.Ordering == OrderStrict {
		for i := 1; i < len(ordered); i++ {
			if ordered[i].Start.Less(ordered[i-1].Start) {
				return nil, fmt.Errorf("%w: caption %d starts at %s before caption %d at %s",
					ErrOutOfOrder, ordered[i].ID, ordered[i].Start, ordered[i-1].ID, ordered[i-1].Start)
			}
		}
	}

	out := make([]Caption, 0, 2*len(ordered)+1)
	var prevEnd rational.Time
	for i, entry := range ordered {
		if i == 0 {
			if rational.Zero.Less(entry.Start) {
				out = append(out, newFiller(rational.Zero, entry.Start))
			}
		} else if prevEnd.Less(entry.Start) {
			out = append(out, newFiller(prevEnd, entry.Start))
		}
		out = append(out, newCaption(entry))
		prevEnd = entry.End
	}

	return &Track{captions: out, real: len(ordered)}, nil
}

// Len returns the number of captions, fillers included.
func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.captions)
}

// RealCount returns the number of captions that came from the source text.
func (t *Track) RealCount() int {
	if t == nil {
		return 0
	}
	return t.real
}

// At returns a copy of the i-th caption.
func (t *Track) At(i int) Caption {
	return t.captions[i].clone()
}

// Captions returns a copy of the whole sequence.
func (t *Track) Captions() []Caption {
	if t == nil {
		return nil
	}
	out := make([]Caption, len(t.captions))
	for i, c := range t.captions {
		out[i] = c.clone()
	}
	return out
}

// End is the upper bound of the last caption.
func (t *Track) End() rational.Time {
	if t.Len() == 0 {
		return rational.Zero
	}
	return t.captions[len(t.captions)-1].DisplayRange.End
}

// Stats reports parser counts when the track came from Decode.
func (t *Track) Stats() ParseStats {
	if t == nil {
		return ParseStats{}
	}
	return t.stats
}
