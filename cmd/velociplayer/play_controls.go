package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"velociplayer/internal/playback"
	"velociplayer/internal/rational"
)

const controlsHelp = "controls: seek <seconds>, f|forward [n], b|back [n], rate <x>, p|pause, r|resume, s|status, q|quit"

// playControls applies line commands from the terminal to a running clock.
type playControls struct {
	driver    *playback.Driver
	printer   *changePrinter
	timescale int32
	stop      context.CancelFunc
}

func (c *playControls) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if quit := c.apply(scanner.Text()); quit {
			return
		}
	}
}

// apply executes one command line and reports whether playback was stopped.
func (c *playControls) apply(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch name := strings.ToLower(fields[0]); name {
	case "seek":
		seconds, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			c.printer.notice("seek needs a time in seconds")
			return false
		}
		t, err := rational.ParseSeconds(seconds, c.timescale)
		if err != nil {
			c.printer.notice(fmt.Sprintf("seek: %v", err))
			return false
		}
		c.driver.Seek(t)
	case "f", "forward", "b", "back":
		steps := 1
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				c.printer.notice(fmt.Sprintf("%s needs a positive step count", name))
				return false
			}
			steps = n
		}
		if name == "b" || name == "back" {
			steps = -steps
		}
		c.driver.Skip(steps)
	case "rate":
		rate, err := strconv.ParseFloat(arg, 64)
		if err == nil {
			err = c.driver.SetRate(rate)
		}
		if err != nil {
			c.printer.notice("rate needs a positive number")
			return false
		}
		c.status()
	case "p", "pause":
		c.driver.Pause()
		c.status()
	case "r", "resume":
		c.driver.Resume()
		c.status()
	case "s", "status":
		c.status()
	case "q", "quit":
		c.stop()
		return true
	case "h", "help", "?":
		c.printer.notice(controlsHelp)
	default:
		c.printer.notice(fmt.Sprintf("unknown control %q (try help)", fields[0]))
	}
	return false
}

func (c *playControls) status() {
	state := "playing"
	if c.driver.Paused() {
		state = "paused"
	}
	c.printer.notice(fmt.Sprintf("at %s, rate %sx, %s",
		c.driver.Position(),
		strconv.FormatFloat(c.driver.Rate(), 'f', -1, 64),
		state,
	))
}
