package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"velociplayer/internal/captions"
	"velociplayer/internal/logging"
	"velociplayer/internal/playback"
	"velociplayer/internal/rational"
)

type playOptions struct {
	charset  string
	ordering string
	from     float64
	rate     float64
	interval time.Duration
	duration float64
	remote   bool
	controls bool
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	opts := playOptions{rate: 1}

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Run a simulated playback clock and print caption changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.rate == 0 {
				return fmt.Errorf("%w: 0", playback.ErrInvalidRate)
			}
			runCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runPlay(runCtx, cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.charset, "charset", "", "Text encoding of the file (default from config)")
	cmd.Flags().StringVar(&opts.ordering, "ordering", "", "Caption ordering: id, start, or strict (default from config)")
	cmd.Flags().Float64Var(&opts.from, "from", 0, "Start position in seconds")
	cmd.Flags().Float64Var(&opts.rate, "rate", 1, "Playback rate")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Wall clock tick period (default from config)")
	cmd.Flags().Float64Var(&opts.duration, "duration", 0, "Stop after this many seconds of media (default: end of captions)")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Send ticks to the running daemon instead of a local adapter")
	cmd.Flags().BoolVar(&opts.controls, "controls", false, "Read playback controls from stdin (default when stdin is a terminal)")
	return cmd
}

func runPlay(runCtx context.Context, cmd *cobra.Command, ctx *commandContext, path string, opts playOptions) error {
	cfg := ctx.configValue()
	logger := ctx.cliLogger()
	track, data, err := readSubtitleFile(cfg, path, opts.charset, opts.ordering)
	if err != nil {
		return err
	}

	timescale := cfg.Playback.Timescale
	end := track.End()
	if opts.duration > 0 {
		end, err = rational.ParseSeconds(opts.duration, timescale)
		if err != nil {
			return fmt.Errorf("--duration: %w", err)
		}
	}
	start, err := rational.ParseSeconds(opts.from, timescale)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	interval := cfg.TickInterval()
	if opts.interval > 0 {
		interval = opts.interval
	}

	printer := &changePrinter{out: cmd.OutOrStdout(), colorize: isTerminal(cmd.OutOrStdout())}

	var sink playback.TimeSink
	if opts.remote {
		client := newAPIClient(cfg)
		if _, err := client.LoadCaptions(runCtx, data, resolveCharset(cfg, opts.charset)); err != nil {
			return err
		}
		if err := client.SetDuration(runCtx, end); err != nil {
			return err
		}
		sink = &remoteSink{ctx: runCtx, client: client, printer: printer, logger: logger}
	} else {
		build, err := buildOptions(cfg, opts.ordering)
		if err != nil {
			return err
		}
		adapter := playback.NewAdapter(playback.Options{Build: build, Logger: logger})
		adapter.Install(track)
		adapter.SetDuration(end)
		local := &localSink{adapter: adapter, printer: printer}
		_, unsubscribe := adapter.Subscribe(playback.ObserverFunc(local.captionChanged))
		defer unsubscribe()
		sink = local
	}

	driver, err := playback.NewDriver(sink, playback.DriverOptions{
		Interval:     interval,
		SeekInterval: cfg.SeekInterval(),
		Rate:         opts.rate,
		Start:        start,
		Duration:     end,
		Timescale:    timescale,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	playCtx, stop := context.WithCancel(runCtx)
	defer stop()
	if opts.controls || isTerminal(cmd.InOrStdin()) {
		controls := &playControls{driver: driver, printer: printer, timescale: timescale, stop: stop}
		printer.notice(controlsHelp)
		go controls.run(cmd.InOrStdin())
	}

	err = driver.Run(playCtx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return err
	}
	printer.notice(fmt.Sprintf("stopped at %s", driver.Position()))
	return nil
}

// changePrinter serializes caption lines from the clock and messages from
// the controls reader.
type changePrinter struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

func (p *changePrinter) print(at rational.Time, c *captions.Caption) {
	p.notice(renderChange(at, c, p.colorize))
}

func (p *changePrinter) notice(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

// localSink records the tick time so the observer, which runs on the same
// goroutine during TimeChanged, can stamp each change.
type localSink struct {
	adapter *playback.Adapter
	printer *changePrinter
	at      rational.Time
}

func (s *localSink) TimeChanged(t rational.Time) {
	s.at = t
	s.adapter.TimeChanged(t)
}

func (s *localSink) captionChanged(c playback.Change) {
	s.printer.print(s.at, c.Caption)
}

// remoteSink posts ticks to the daemon and prints when the returned caption
// differs from the previous one.
type remoteSink struct {
	ctx     context.Context
	client  *apiClient
	printer *changePrinter
	logger  *slog.Logger

	last    *captions.Caption
	started bool
}

func (s *remoteSink) TimeChanged(t rational.Time) {
	current, err := s.client.SetTime(s.ctx, t)
	if err != nil {
		if s.ctx.Err() == nil {
			s.logger.Warn("send playback time failed", logging.String("at", t.String()), logging.Error(err))
		}
		return
	}
	if s.started && captions.Same(s.last, current) {
		return
	}
	s.started = true
	s.last = current
	s.printer.print(t, current)
}
