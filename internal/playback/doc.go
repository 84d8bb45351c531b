// Package playback connects a playback clock to the caption locator.
//
// Adapter owns the loaded caption track and the currently active caption.
// The player engine feeds it time notifications; it republishes the active
// caption to observers only when the value actually changes. Driver is a
// simulated engine clock used by the CLI and tests: it ticks at a fixed wall
// interval, honours seek, skip, rate, and pause, and stops at the duration.
package playback
