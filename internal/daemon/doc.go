// Package daemon hosts one playback.Adapter behind an HTTP API.
//
// A Daemon takes a flock-based lock so only one instance runs per lock file,
// serves the JSON API on the configured bind address, and pushes caption
// changes to websocket clients. Subtitle files can be loaded from request
// bodies or from the SQLite library when a store is attached.
//
// The engine (a real player or `velociplayer play --remote`) posts time ticks
// to /api/time; everything caption related stays inside the Adapter.
package daemon
