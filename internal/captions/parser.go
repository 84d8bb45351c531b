package captions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"velociplayer/internal/rational"
)

// blockPattern matches one subtitle block: id line, timing line, and a body
// that starts with a non-blank line and runs lazily up to the next blank line.
var blockPattern = regexp.MustCompile(
	`(?m)^(\d+)\r?\n(\d{2}:\d{2}:\d{2},\d{3}) --> (\d{2}:\d{2}:\d{2},\d{3})\r?\n([^\r\n](?s:.*?))\r?\n\r?\n`,
)

// ParseStats counts matched blocks and the ones dropped during field parsing.
type ParseStats struct {
	Blocks  int
	Entries int
	Dropped int
}

// Parse returns the well-formed entries of text in declaration order.
func Parse(text string) []Entry {
	entries, _ := ParseWithStats(text)
	return entries
}

// ParseWithStats is Parse plus block counts for diagnostics.
func ParseWithStats(text string) ([]Entry, ParseStats) {
	// Trailing newlines let the last block end the same way as the others.
	text = strings.TrimPrefix(text, "\ufeff") + "\n\n"

	var stats ParseStats
	matches := blockPattern.FindAllStringSubmatch(text, -1)
	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		stats.Blocks++
		entry, err := parseBlock(m[1], m[2], m[3], m[4])
		if err != nil {
			stats.Dropped++
			continue
		}
		entries = append(entries, entry)
	}
	stats.Entries = len(entries)
	return entries, stats
}

func parseBlock(idText, startText, endText, body string) (Entry, error) {
	id, err := strconv.Atoi(idText)
	if err != nil {
		return Entry{}, fmt.Errorf("caption id %q: %w", idText, err)
	}
	start, err := parseTimestamp(startText)
	if err != nil {
		return Entry{}, err
	}
	end, err := parseTimestamp(endText)
	if err != nil {
		return Entry{}, err
	}
	if end.Less(start) {
		return Entry{}, fmt.Errorf("caption %d ends at %s before it starts at %s", id, end, start)
	}
	return Entry{
		ID:    id,
		Start: start,
		End:   end,
		Text:  strings.Trim(body, "\r\n"),
	}, nil
}

// parseTimestamp converts HH:MM:SS,mmm into a time at the caption timescale.
func parseTimestamp(value string) (rational.Time, error) {
	clock, millisText, ok := strings.Cut(value, ",")
	if !ok {
		return rational.Time{}, fmt.Errorf("invalid timestamp %q", value)
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return rational.Time{}, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	seconds, errS := strconv.Atoi(parts[2])
	millis, errMS := strconv.Atoi(millisText)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return rational.Time{}, fmt.Errorf("invalid timestamp %q", value)
	}
	if minutes >= 60 || seconds >= 60 {
		return rational.Time{}, fmt.Errorf("timestamp %q out of range", value)
	}
	total := int64(hours)*3_600_000 + int64(minutes)*60_000 + int64(seconds)*1000 + int64(millis)
	return rational.FromMilliseconds(total, rational.DefaultTimescale), nil
}
