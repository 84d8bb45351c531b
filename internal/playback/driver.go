package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"velociplayer/internal/logging"
	"velociplayer/internal/rational"
)

const (
	// DefaultTickInterval matches the engine observer period of 0.1s.
	DefaultTickInterval = 100 * time.Millisecond
	// DefaultSeekInterval is the skip distance for Skip(±1).
	DefaultSeekInterval = 10 * time.Second
)

// ErrInvalidRate is returned for non-positive or non-finite rates.
var ErrInvalidRate = errors.New("playback rate must be a positive finite number")

// TimeSink receives clock ticks. Adapter implements it.
type TimeSink interface {
	TimeChanged(rational.Time)
}

// DriverOptions configures a Driver. Zero values select defaults.
type DriverOptions struct {
	Interval     time.Duration
	SeekInterval time.Duration
	Rate         float64
	Start        rational.Time
	// Duration stops the clock when reached. An invalid (zero) value runs forever.
	Duration  rational.Time
	Timescale int32
	Logger    *slog.Logger
}

// Driver is a simulated playback clock.
type Driver struct {
	sink         TimeSink
	interval     time.Duration
	seekInterval time.Duration
	timescale    int32
	logger       *slog.Logger

	mu       sync.Mutex
	pos      rational.Time
	rate     float64
	paused   bool
	duration rational.Time
	bounded  bool

	wake chan struct{}
}

// NewDriver builds a driver feeding sink.
func NewDriver(sink TimeSink, opts DriverOptions) (*Driver, error) {
	if sink == nil {
		return nil, errors.New("playback driver requires a time sink")
	}
	rate := opts.Rate
	if rate == 0 {
		rate = 1
	}
	if err := checkRate(rate); err != nil {
		return nil, err
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	seek := opts.SeekInterval
	if seek <= 0 {
		seek = DefaultSeekInterval
	}
	timescale := opts.Timescale
	if timescale <= 0 {
		timescale = rational.DefaultTimescale
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	d := &Driver{
		sink:         sink,
		interval:     interval,
		seekInterval: seek,
		timescale:    timescale,
		logger:       logging.NewComponentLogger(logger, "driver"),
		rate:         rate,
		pos:          rational.New(0, timescale),
		wake:         make(chan struct{}, 1),
	}
	if opts.Duration.Valid() {
		d.duration = opts.Duration.ConvertScale(timescale)
		d.bounded = true
	}
	if opts.Start.Valid() {
		d.pos = d.clampLocked(opts.Start.ConvertScale(timescale))
	}
	return d, nil
}

// Run emits the current position, then one tick per interval until ctx is
// done or the clock reaches the duration. Reaching the end returns nil.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Debug("driver started",
		logging.String("position", d.Position().String()),
		logging.Duration("interval", d.interval),
	)
	if d.emit() {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.wake:
			if d.emit() {
				return nil
			}
		case <-ticker.C:
			if d.advance() {
				return nil
			}
		}
	}
}

// Seek moves the clock to t, clamped to [0, duration].
func (d *Driver) Seek(t rational.Time) {
	d.mu.Lock()
	d.pos = d.clampLocked(t.ConvertScale(d.timescale))
	pos := d.pos
	d.mu.Unlock()
	d.logger.Debug("seek", logging.String("position", pos.String()))
	d.signal()
}

// Skip moves by steps seek intervals; negative steps skip backwards.
func (d *Driver) Skip(steps int) {
	delta := rational.FromDuration(time.Duration(steps)*d.seekInterval, d.timescale)
	d.mu.Lock()
	d.pos = d.clampLocked(d.pos.Add(delta))
	d.mu.Unlock()
	d.signal()
}

// SetRate changes the playback rate for subsequent ticks.
func (d *Driver) SetRate(rate float64) error {
	if err := checkRate(rate); err != nil {
		return err
	}
	d.mu.Lock()
	d.rate = rate
	d.mu.Unlock()
	d.logger.Debug("rate changed", logging.Float64("rate", rate))
	return nil
}

// Pause stops the clock from advancing; Run keeps waiting.
func (d *Driver) Pause() {
	d.setPaused(true)
}

// Resume undoes Pause.
func (d *Driver) Resume() {
	d.setPaused(false)
}

func (d *Driver) setPaused(paused bool) {
	d.mu.Lock()
	d.paused = paused
	pos := d.pos
	d.mu.Unlock()
	d.logger.Debug("pause toggled", logging.Bool("paused", paused), logging.String("position", pos.String()))
}

// Position returns the current clock value.
func (d *Driver) Position() rational.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pos
}

// Paused reports whether the clock is paused.
func (d *Driver) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

// Rate returns the current playback rate.
func (d *Driver) Rate() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rate
}

// advance moves one tick forward and emits it. It reports whether the end
// has been reached.
func (d *Driver) advance() bool {
	d.mu.Lock()
	if d.paused {
		d.mu.Unlock()
		return false
	}
	step := rational.FromDuration(time.Duration(float64(d.interval)*d.rate), d.timescale)
	d.pos = d.clampLocked(d.pos.Add(step))
	d.mu.Unlock()
	return d.emit()
}

func (d *Driver) emit() bool {
	d.mu.Lock()
	pos := d.pos
	ended := d.bounded && !pos.Less(d.duration)
	d.mu.Unlock()

	d.sink.TimeChanged(pos)
	if ended {
		d.logger.Debug("driver reached end", logging.String("position", pos.String()))
	}
	return ended
}

func (d *Driver) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Driver) clampLocked(t rational.Time) rational.Time {
	if t.IsNegative() {
		return rational.New(0, d.timescale)
	}
	if d.bounded && d.duration.Less(t) {
		return d.duration
	}
	return t
}

func checkRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	return nil
}
