// Package captions decodes SubRip-style subtitle text into gap-free caption
// tracks and answers "which caption is active at time T" against them.
//
// Decoding is two steps. Parse scans the text with a single block pattern and
// yields raw entries in declaration order, silently dropping malformed blocks.
// BuildTrack orders those entries, then walks them once to insert fillers
// (captions without text) so the result covers [0, end] without holes. Tracks
// are immutable once built.
//
// Locate and Search never mutate the track and hold no references after they
// return, so they may be called from any goroutine.
package captions
