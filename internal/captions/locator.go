package captions

import "velociplayer/internal/rational"

// Locate returns the caption active at t. When cached still covers t it is
// returned unchanged without searching.
func Locate(track *Track, t rational.Time, cached *Caption) *Caption {
	if cached != nil && cached.DisplayRange.Contains(t) {
		return cached
	}
	return Search(track, t)
}

// Search binary-searches the track for the caption containing t. It returns
// nil when the track is empty, when t is past the end, and for negative t.
func Search(track *Track, t rational.Time) *Caption {
	if track.Len() == 0 {
		return nil
	}
	if track.End().Less(t) {
		return nil
	}

	lo, hi := 0, len(track.captions)
	for lo < hi {
		mid := lo + (hi-lo)/2
		r := track.captions[mid].DisplayRange
		switch {
		case r.Contains(t):
			c := track.captions[mid].clone()
			return &c
		case t.Less(r.Start):
			hi = mid
		case r.End.Less(t):
			lo = mid + 1
		default:
			return nil
		}
	}
	return nil
}
