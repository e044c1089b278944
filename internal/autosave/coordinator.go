package autosave

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// State is the coordinator's position in the autosave cycle.
type State string

const (
	StateIdle      State = "idle"
	StateScheduled State = "scheduled"
	StateSaving    State = "saving"
	StateError     State = "error"
)

const (
	DefaultInterval  = 30 * time.Second
	DefaultFreshness = 30 * time.Minute
)

// CaptureFunc returns the current serialized form state. It is called on
// every save tick.
type CaptureFunc func() (json.RawMessage, error)

// Options tune a Coordinator. Zero values fall back to defaults.
type Options struct {
	Interval  time.Duration
	Freshness time.Duration
	Clock     Clock
	Scheduler Scheduler
}

// Coordinator periodically snapshots one form instance's state to a Store and
// reconciles with any prior unsaved snapshot at mount time. It never discards
// or overwrites user work without an explicit decision: while a recovery
// prompt is pending the timer does not run, so a fresh autosave cannot
// clobber the snapshot the user is deciding about.
type Coordinator struct {
	store     Store
	key       Key
	capture   CaptureFunc
	interval  time.Duration
	freshness time.Duration
	clock     Clock
	scheduler Scheduler

	mu        sync.Mutex
	state     State
	pending   *Snapshot
	lastSaved time.Time
	lastErr   error
	cancel    func()
}

func NewCoordinator(store Store, key Key, capture CaptureFunc, opts Options) (*Coordinator, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if capture == nil {
		return nil, fmt.Errorf("capture func is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Freshness <= 0 {
		opts.Freshness = DefaultFreshness
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	return &Coordinator{
		store:     store,
		key:       key,
		capture:   capture,
		interval:  opts.Interval,
		freshness: opts.Freshness,
		clock:     opts.Clock,
		scheduler: opts.Scheduler,
		state:     StateIdle,
	}, nil
}

// Recover runs the mount-time recovery check. It returns a snapshot only when
// one exists under this coordinator's key and is within the freshness window;
// the caller must then resolve it with Restore or Discard before the timer
// can start. A nil result means proceed with a fresh draft and call Start.
func (c *Coordinator) Recover(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return nil, fmt.Errorf("recover is only valid before autosave starts")
	}

	snap, err := c.store.Read(ctx, c.key)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		// A broken store must not block the form; treat as no snapshot.
		return nil, nil
	}
	if !snap.Fresh(c.clock.Now(), c.freshness) {
		return nil, nil
	}
	c.pending = snap
	return snap, nil
}

// Restore resolves a pending recovery prompt by accepting the snapshot. It
// returns the payload to load back into the draft and starts the timer.
func (c *Coordinator) Restore() (json.RawMessage, error) {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("no recovery decision pending")
	}
	payload := c.pending.Payload
	c.pending = nil
	c.mu.Unlock()

	return payload, c.Start()
}

// Discard resolves a pending recovery prompt by deleting the snapshot, then
// starts the timer over a fresh draft. A subsequent mount will not re-prompt.
func (c *Coordinator) Discard(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return fmt.Errorf("no recovery decision pending")
	}
	c.pending = nil
	c.mu.Unlock()

	if err := c.store.Delete(ctx, c.key); err != nil {
		return err
	}
	return c.Start()
}

// Start arms the autosave timer. It refuses while a recovery decision is
// pending and is a no-op if already running.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		return fmt.Errorf("recovery decision pending; resolve it before starting autosave")
	}
	if c.state != StateIdle {
		return nil
	}
	c.state = StateScheduled
	c.cancel = c.scheduler.Schedule(c.interval, c.tick)
	return nil
}

// tick performs one save cycle. Failures leave the coordinator in StateError
// and are retried on the next tick; they never interrupt the form.
func (c *Coordinator) tick() {
	c.mu.Lock()
	if c.state == StateIdle || c.state == StateSaving {
		c.mu.Unlock()
		return
	}
	c.state = StateSaving
	c.mu.Unlock()

	payload, err := c.capture()
	if err == nil {
		snap := &Snapshot{Key: c.key, Payload: payload, SavedAt: c.clock.Now()}
		err = c.store.Write(context.Background(), snap)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		// Stopped while saving; drop the result.
		return
	}
	if err != nil {
		c.state = StateError
		c.lastErr = err
		return
	}
	c.state = StateScheduled
	c.lastSaved = c.clock.Now()
	c.lastErr = nil
}

// Stop cancels the timer. Called on unmount and after submission so an
// orphaned timer cannot write to a stale key.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateIdle
}

// Clear stops the timer and deletes the snapshot. Called after a successful
// remote submission.
func (c *Coordinator) Clear(ctx context.Context) error {
	c.Stop()
	return c.store.Delete(ctx, c.key)
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastSavedAt returns the time of the last successful save, zero if none.
func (c *Coordinator) LastSavedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaved
}

// Err returns the most recent save error, nil after a successful save.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
