package playback

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"velociplayer/internal/captions"
	"velociplayer/internal/logging"
	"velociplayer/internal/rational"
)

// Change is one published caption transition. Caption is nil when nothing
// is active: no track, past the end, or captions removed.
type Change struct {
	Seq     uint64            `json:"seq"`
	Caption *captions.Caption `json:"caption"`
}

// Observer receives caption changes in the order they occurred.
type Observer interface {
	CaptionChanged(Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

// CaptionChanged calls f.
func (f ObserverFunc) CaptionChanged(c Change) { f(c) }

// Status is a point-in-time view of the adapter.
type Status struct {
	Loaded       bool              `json:"loaded"`
	Captions     int               `json:"captions"`
	RealCaptions int               `json:"real_captions"`
	End          *rational.Time    `json:"end,omitempty"`
	Time         *rational.Time    `json:"time,omitempty"`
	Duration     *rational.Time    `json:"duration,omitempty"`
	Progress     float64           `json:"progress"`
	Caption      *captions.Caption `json:"caption"`
	Searches     uint64            `json:"searches"`
	Seq          uint64            `json:"seq"`
	Observers    int               `json:"observers"`
}

// Options configures an Adapter.
type Options struct {
	Build  captions.BuildOptions
	Logger *slog.Logger
}

type subscription struct {
	id       string
	observer Observer
}

// Adapter holds the active track and caption for one player.
//
// State changes happen under mu. Changes are queued under the same lock and
// delivered by whichever caller finds the queue idle, so observers see them
// in order and may call back into the adapter.
type Adapter struct {
	mu        sync.Mutex
	track     *captions.Track
	active    *captions.Caption
	now       rational.Time
	hasTime   bool
	duration  rational.Time
	hasDur    bool
	searches  uint64
	seq       uint64
	observers []subscription
	pending   []Change
	draining  bool

	build  captions.BuildOptions
	logger *slog.Logger

	// search is replaced in tests to count locator calls.
	search func(*captions.Track, rational.Time) *captions.Caption
}

// NewAdapter returns an adapter with no track loaded.
func NewAdapter(opts Options) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{
		build:  opts.Build,
		logger: logging.NewComponentLogger(logger, "playback"),
		search: captions.Search,
	}
}

// TimeChanged reports the engine's current playback time. Nothing is
// searched while the active caption still covers t or t is past the end of
// the track.
func (a *Adapter) TimeChanged(t rational.Time) {
	a.mu.Lock()
	a.now = t
	a.hasTime = true
	a.evaluateLocked()
	drain := a.claimDrainLocked()
	a.mu.Unlock()
	if drain {
		a.drain()
	}
}

// SetDuration records the media duration used for progress reporting.
func (a *Adapter) SetDuration(d rational.Time) {
	a.mu.Lock()
	a.duration = d
	a.hasDur = true
	a.mu.Unlock()
}

// LoadText decodes a subtitle payload and installs it. On failure the
// previously loaded track stays in place.
func (a *Adapter) LoadText(text string) error {
	track, err := captions.Decode(text, a.build)
	if err != nil {
		a.logger.Warn("caption load failed", logging.Error(err))
		return err
	}
	a.Install(track)
	return nil
}

// LoadBytes is LoadText for raw bytes in the given charset (empty means UTF-8).
func (a *Adapter) LoadBytes(data []byte, charset string) error {
	track, err := captions.DecodeBytes(data, charset, a.build)
	if err != nil {
		a.logger.Warn("caption load failed",
			logging.String("charset", charset),
			logging.Int("bytes", len(data)),
			logging.Error(err),
		)
		return err
	}
	a.Install(track)
	return nil
}

// Install replaces the active track with an already decoded one. The active
// caption is cleared first, then the last known time is evaluated against
// the new track.
func (a *Adapter) Install(track *captions.Track) {
	stats := track.Stats()
	a.mu.Lock()
	if a.active != nil {
		a.active = nil
		a.enqueueLocked(nil)
	}
	a.track = track
	if a.hasTime {
		a.evaluateLocked()
	}
	drain := a.claimDrainLocked()
	a.mu.Unlock()

	a.logger.Info("captions loaded",
		logging.Int("captions", track.RealCount()),
		logging.Int("fillers", track.Len()-track.RealCount()),
		logging.String("end", track.End().String()),
	)
	if stats.Dropped > 0 {
		a.logger.Debug("subtitle blocks dropped",
			logging.Int("blocks", stats.Blocks),
			logging.Int("dropped", stats.Dropped),
		)
	}
	if drain {
		a.drain()
	}
}

// Remove unloads the track and clears the active caption.
func (a *Adapter) Remove() {
	a.mu.Lock()
	hadTrack := a.track != nil
	a.track = nil
	if a.active != nil {
		a.active = nil
		a.enqueueLocked(nil)
	}
	drain := a.claimDrainLocked()
	a.mu.Unlock()
	if hadTrack {
		a.logger.Info("captions removed")
	}
	if drain {
		a.drain()
	}
}

// Current returns a copy of the active caption, or nil.
func (a *Adapter) Current() *captions.Caption {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneCaption(a.active)
}

// Snapshot returns the adapter status.
func (a *Adapter) Snapshot() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := Status{
		Loaded:    a.track != nil,
		Caption:   cloneCaption(a.active),
		Searches:  a.searches,
		Seq:       a.seq,
		Observers: len(a.observers),
	}
	if a.track != nil {
		st.Captions = a.track.Len()
		st.RealCaptions = a.track.RealCount()
		end := a.track.End()
		st.End = &end
	}
	if a.hasTime {
		now := a.now
		st.Time = &now
	}
	if a.hasDur {
		dur := a.duration
		st.Duration = &dur
		if a.hasTime {
			st.Progress = progress(a.now, dur)
		}
	}
	return st
}

// Subscribe registers an observer. The returned cancel func is idempotent.
func (a *Adapter) Subscribe(o Observer) (string, func()) {
	id := uuid.NewString()
	a.mu.Lock()
	a.observers = append(a.observers, subscription{id: id, observer: o})
	a.mu.Unlock()

	var once sync.Once
	return id, func() {
		once.Do(func() {
			a.mu.Lock()
			a.observers = slices.DeleteFunc(a.observers, func(s subscription) bool { return s.id == id })
			a.mu.Unlock()
		})
	}
}

func (a *Adapter) evaluateLocked() {
	if a.track == nil {
		return
	}
	if a.active != nil && a.active.DisplayRange.Contains(a.now) {
		return
	}
	if a.track.End().Less(a.now) {
		if a.active != nil {
			a.active = nil
			a.enqueueLocked(nil)
		}
		return
	}
	a.searches++
	next := a.search(a.track, a.now)
	if captions.Same(next, a.active) {
		return
	}
	a.active = next
	a.enqueueLocked(next)
}

func (a *Adapter) enqueueLocked(c *captions.Caption) {
	a.seq++
	a.pending = append(a.pending, Change{Seq: a.seq, Caption: cloneCaption(c)})
}

func (a *Adapter) claimDrainLocked() bool {
	if a.draining || len(a.pending) == 0 {
		return false
	}
	a.draining = true
	return true
}

func (a *Adapter) drain() {
	for {
		a.mu.Lock()
		if len(a.pending) == 0 {
			a.draining = false
			a.mu.Unlock()
			return
		}
		batch := a.pending
		a.pending = nil
		observers := slices.Clone(a.observers)
		a.mu.Unlock()

		for _, change := range batch {
			for _, sub := range observers {
				sub.observer.CaptionChanged(Change{Seq: change.Seq, Caption: cloneCaption(change.Caption)})
			}
		}
	}
}

func cloneCaption(c *captions.Caption) *captions.Caption {
	if c == nil {
		return nil
	}
	out := *c
	if c.ID != nil {
		id := *c.ID
		out.ID = &id
	}
	if c.Text != nil {
		text := *c.Text
		out.Text = &text
	}
	return &out
}

func progress(now, duration rational.Time) float64 {
	total := duration.Seconds()
	if total <= 0 {
		return 0
	}
	p := now.Seconds() / total
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
