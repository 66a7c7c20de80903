package watch

import (
	"context"
	"sync"
	"time"

	"blogbuilder/internal/foundation"
)

// DebouncerConfig tunes how change bursts are coalesced.
type DebouncerConfig struct {
	QuietWindow time.Duration
	MaxDelay    time.Duration

	// BuildRunning reports whether a build is currently in flight. When it
	// returns true the debouncer holds the trigger and schedules exactly one
	// follow-up after the running build finishes.
	BuildRunning func() bool

	// PollInterval controls how often a held trigger re-checks BuildRunning.
	PollInterval time.Duration
}

// Trigger is an emitted rebuild request covering a burst of changes.
type Trigger struct {
	FiredAt     time.Time
	FirstChange time.Time
	LastChange  time.Time
	ChangeCount int
	LastPath    string
	Cause       string
}

// Debouncer coalesces bursts of file-change notifications into single
// rebuild triggers:
//   - quiet window debounce
//   - max delay (a steady stream of changes cannot postpone indefinitely)
//   - if a build is already running, queue exactly one follow-up
//
// Run is meant to be a single goroutine; Notify is safe from any goroutine.
type Debouncer struct {
	cfg DebouncerConfig

	changes  chan change
	triggers chan Trigger

	mu              sync.Mutex
	pending         bool
	pendingAfterRun bool
	pollingAfterRun bool
	firstChangeAt   time.Time
	lastChangeAt    time.Time
	lastPath        string
	changeCount     int
}

type change struct {
	path string
	at   time.Time
}

func NewDebouncer(cfg DebouncerConfig) (*Debouncer, error) {
	if cfg.QuietWindow <= 0 {
		return nil, foundation.ValidationError("quiet window must be > 0").Build()
	}
	if cfg.MaxDelay <= 0 {
		return nil, foundation.ValidationError("max delay must be > 0").Build()
	}
	if cfg.BuildRunning == nil {
		cfg.BuildRunning = func() bool { return false }
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}

	return &Debouncer{
		cfg:      cfg,
		changes:  make(chan change, 64),
		triggers: make(chan Trigger, 1),
	}, nil
}

// Notify records a file change. It never blocks; under extreme bursts
// excess notifications are dropped, which is harmless since a pending
// trigger already covers them.
func (d *Debouncer) Notify(path string) {
	select {
	case d.changes <- change{path: path, at: time.Now()}:
	default:
	}
}

// Triggers delivers coalesced rebuild requests.
func (d *Debouncer) Triggers() <-chan Trigger {
	return d.triggers
}

func (d *Debouncer) Run(ctx context.Context) error {
	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	pollTimer := newStoppedTimer()

	var (
		quietC <-chan time.Time
		maxC   <-chan time.Time
		pollC  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ch := <-d.changes:
			d.onChange(ch)

			resetTimer(quietTimer, d.cfg.QuietWindow)
			quietC = quietTimer.C

			if d.firstOfBurst() {
				resetTimer(maxTimer, d.cfg.MaxDelay)
				maxC = maxTimer.C
			}

		case <-quietC:
			if d.tryEmit(ctx, "quiet") {
				quietC = nil
				maxC = nil
			}

		case <-maxC:
			if d.tryEmit(ctx, "max_delay") {
				quietC = nil
				maxC = nil
			}

		case <-pollC:
			if d.tryEmitAfterRunning(ctx) {
				pollC = nil
				quietC = nil
				maxC = nil
				continue
			}
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}

		if d.shouldPollAfterRun() && pollC == nil {
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}
	}
}

func (d *Debouncer) onChange(ch change) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending {
		d.pending = true
		d.firstChangeAt = ch.at
		d.changeCount = 0
	}
	d.lastChangeAt = ch.at
	d.lastPath = ch.path
	d.changeCount++
}

func (d *Debouncer) firstOfBurst() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending && d.changeCount == 1
}

func (d *Debouncer) shouldPollAfterRun() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingAfterRun && !d.pollingAfterRun
}

func (d *Debouncer) tryEmit(ctx context.Context, cause string) bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return true
	}
	if d.cfg.BuildRunning() {
		d.pendingAfterRun = true
		d.mu.Unlock()
		return false
	}

	trig := Trigger{
		FiredAt:     time.Now(),
		FirstChange: d.firstChangeAt,
		LastChange:  d.lastChangeAt,
		ChangeCount: d.changeCount,
		LastPath:    d.lastPath,
		Cause:       cause,
	}
	d.pending = false
	d.pendingAfterRun = false
	d.pollingAfterRun = false
	d.mu.Unlock()

	select {
	case d.triggers <- trig:
	case <-ctx.Done():
	}
	return true
}

func (d *Debouncer) tryEmitAfterRunning(ctx context.Context) bool {
	d.mu.Lock()
	if !d.pendingAfterRun {
		d.mu.Unlock()
		return true
	}
	d.pollingAfterRun = true
	d.mu.Unlock()

	if d.cfg.BuildRunning() {
		return false
	}

	// Build finished; emit exactly one follow-up.
	return d.tryEmit(ctx, "after_running")
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	return t
}

func resetTimer(t *time.Timer, after time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(after)
}
