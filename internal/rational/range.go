package rational

import "fmt"

// Range is a closed interval [Start, End].
type Range struct {
	Start Time `json:"start"`
	End   Time `json:"end"`
}

// NewRange panics when end precedes start.
func NewRange(start, end Time) Range {
	if end.Less(start) {
		panic(fmt.Sprintf("rational: range end %s precedes start %s", end, start))
	}
	return Range{Start: start, End: end}
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t Time) bool {
	return r.Start.LessOrEqual(t) && t.LessOrEqual(r.End)
}

// Equal compares both bounds exactly.
func (r Range) Equal(other Range) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start, r.End)
}
