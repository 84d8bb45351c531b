package captions

import "errors"

var (
	// ErrInvalidEncoding reports bytes that could not be decoded as text.
	ErrInvalidEncoding = errors.New("invalid subtitle encoding")
	// ErrNoEntriesParsed reports a payload without a single well-formed block.
	ErrNoEntriesParsed = errors.New("invalid subtitle data: no caption entries parsed")
	// ErrOutOfOrder is returned by strict ordering when id order disagrees with time order.
	ErrOutOfOrder = errors.New("invalid subtitle data: caption ids are not in chronological order")
)
