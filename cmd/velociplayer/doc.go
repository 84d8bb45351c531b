// Command velociplayer decodes SubRip caption files, simulates playback
// against them, keeps a library of imported subtitles, and runs the caption
// daemon.
//
// Commands that only read a file (decode, locate, play) work without a
// daemon. `serve` hosts the HTTP API and websocket stream; `status` and
// `play --remote` talk to it over HTTP.
package main
