package captions

import (
	"velociplayer/internal/rational"
)

// Entry is one parsed subtitle block before ordering and gap filling.
type Entry struct {
	ID    int
	Start rational.Time
	End   rational.Time
	Text  string
}

// Caption is a track element. A nil Text marks a filler: nothing to display.
type Caption struct {
	ID           *int           `json:"id"`
	DisplayRange rational.Range `json:"display_range"`
	Text         *string        `json:"text"`
}

func newCaption(e Entry) Caption {
	id := e.ID
	text := e.Text
	return Caption{
		ID:           &id,
		DisplayRange: rational.NewRange(e.Start, e.End),
		Text:         &text,
	}
}

func newFiller(start, end rational.Time) Caption {
	return Caption{DisplayRange: rational.NewRange(start, end)}
}

// IsFiller reports whether the caption was synthesized to close a gap.
func (c Caption) IsFiller() bool {
	return c.Text == nil
}

// TextOrEmpty returns the caption text, or "" for fillers.
func (c Caption) TextOrEmpty() string {
	if c.Text == nil {
		return ""
	}
	return *c.Text
}

// Equal compares id, range, and text, treating absence as a distinct value.
func (c Caption) Equal(other Caption) bool {
	if (c.ID == nil) != (other.ID == nil) {
		return false
	}
	if c.ID != nil && *c.ID != *other.ID {
		return false
	}
	if (c.Text == nil) != (other.Text == nil) {
		return false
	}
	if c.Text != nil && *c.Text != *other.Text {
		return false
	}
	return c.DisplayRange.Equal(other.DisplayRange)
}

// Same reports whether two optional captions are equal; two nils are equal.
func Same(a, b *Caption) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (c Caption) clone() Caption {
	if c.ID != nil {
		id := *c.ID
		c.ID = &id
	}
	if c.Text != nil {
		text := *c.Text
		c.Text = &text
	}
	return c
}
