package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"velociplayer/internal/captions"
	"velociplayer/internal/rational"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

const (
	labelGap  = "(gap)"
	labelNone = "(none)"
)

// isTerminal reports whether stream is a terminal.
func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func captionIDCell(c *captions.Caption) string {
	if c == nil || c.ID == nil {
		return "-"
	}
	return strconv.Itoa(*c.ID)
}

func captionTextCell(c *captions.Caption) string {
	switch {
	case c == nil:
		return labelNone
	case c.IsFiller():
		return labelGap
	default:
		return *c.Text
	}
}

// renderChange formats one live caption change for `play`.
func renderChange(at rational.Time, c *captions.Caption, colorize bool) string {
	stamp := fmt.Sprintf("[%s]", at)
	var body, color string
	switch {
	case c == nil:
		body, color = "(end of captions)", ansiYellow
	case c.IsFiller():
		body, color = "…", ansiDim
	default:
		body = strings.ReplaceAll(*c.Text, "\n", " / ")
	}
	if !colorize {
		return stamp + " " + body
	}
	line := ansiCyan + stamp + ansiReset + " "
	if color != "" {
		return line + color + body + ansiReset
	}
	return line + body
}
