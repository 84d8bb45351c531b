package captions

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode parses text and builds a track from it. A payload without any
// well-formed block fails with ErrNoEntriesParsed.
func Decode(text string, opts BuildOptions) (*Track, error) {
	entries, stats := ParseWithStats(text)
	track, err := BuildTrack(entries, opts)
	if err != nil {
		return nil, err
	}
	track.stats = stats
	return track, nil
}

// DecodeBytes converts data to text using charset and then decodes it.
func DecodeBytes(data []byte, charset string, opts BuildOptions) (*Track, error) {
	text, err := DecodeText(data, charset)
	if err != nil {
		return nil, err
	}
	return Decode(text, opts)
}

var (
	utf16BEBOM = []byte{0xFE, 0xFF}
	utf16LEBOM = []byte{0xFF, 0xFE}
)

// DecodeText turns raw bytes into a string. An empty charset means UTF-8;
// UTF-16 payloads carrying a byte order mark are detected either way. Other
// charsets are resolved by their WHATWG label (windows-1252, iso-8859-1, ...).
func DecodeText(data []byte, charset string) (string, error) {
	if bytes.HasPrefix(data, utf16BEBOM) || bytes.HasPrefix(data, utf16LEBOM) {
		out, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		return string(out), nil
	}

	label := strings.ToLower(strings.TrimSpace(charset))
	if label == "" || label == "utf-8" || label == "utf8" {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: payload is not valid UTF-8", ErrInvalidEncoding)
		}
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("%w: unknown charset %q", ErrInvalidEncoding, charset)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %v", ErrInvalidEncoding, label, err)
	}
	return strings.TrimPrefix(string(out), "\ufeff"), nil
}

// CanonicalCharset returns the WHATWG name for a charset label, so aliases
// such as "latin1" and "cp1252" compare equal. An empty label is UTF-8.
func CanonicalCharset(charset string) (string, error) {
	label := strings.ToLower(strings.TrimSpace(charset))
	if label == "" || label == "utf8" {
		return "utf-8", nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("%w: unknown charset %q", ErrInvalidEncoding, charset)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return label, nil
	}
	return name, nil
}
