package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock for deterministic freshness checks.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// manualScheduler fires ticks only when the test asks for them.
type manualScheduler struct {
	mu        sync.Mutex
	fn        func()
	cancelled bool
}

func (m *manualScheduler) Schedule(_ time.Duration, fn func()) (cancel func()) {
	m.mu.Lock()
	m.fn = fn
	m.cancelled = false
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.cancelled = true
		m.fn = nil
		m.mu.Unlock()
	}
}

func (m *manualScheduler) Tick() {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (m *manualScheduler) Cancelled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}

// failingStore wraps a Store and fails writes on demand.
type failingStore struct {
	Store
	mu   sync.Mutex
	fail bool
}

func (f *failingStore) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *failingStore) Write(ctx context.Context, snap *Snapshot) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("store unavailable")
	}
	return f.Store.Write(ctx, snap)
}

func staticCapture(payload string) CaptureFunc {
	return func() (json.RawMessage, error) {
		return json.RawMessage(payload), nil
	}
}

func newTestCoordinator(t *testing.T, store Store, clock Clock, sched Scheduler, capture CaptureFunc) *Coordinator {
	t.Helper()
	co, err := NewCoordinator(store, testKey(), capture, Options{
		Interval:  30 * time.Second,
		Freshness: 30 * time.Minute,
		Clock:     clock,
		Scheduler: sched,
	})
	require.NoError(t, err)
	return co
}

func TestCoordinatorSaveCycle(t *testing.T) {
	store := NewMemoryStore()
	clock := newFakeClock()
	sched := &manualScheduler{}
	co := newTestCoordinator(t, store, clock, sched, staticCapture(`{"length":"4.5"}`))

	snap, err := co.Recover(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap, "fresh mount should have nothing to recover")

	require.NoError(t, co.Start())
	assert.Equal(t, StateScheduled, co.State())
	assert.True(t, co.LastSavedAt().IsZero())

	clock.Advance(30 * time.Second)
	sched.Tick()

	assert.Equal(t, StateScheduled, co.State())
	assert.Equal(t, clock.Now(), co.LastSavedAt())
	require.NoError(t, co.Err())

	got, err := store.Read(context.Background(), testKey())
	require.NoError(t, err)
	assert.JSONEq(t, `{"length":"4.5"}`, string(got.Payload))
}

func TestCoordinatorRoundTripWithinFreshness(t *testing.T) {
	store := NewMemoryStore()
	clock := newFakeClock()
	sched := &manualScheduler{}

	// First mount writes a snapshot.
	co := newTestCoordinator(t, store, clock, sched, staticCapture(`{"wound_type":"Venous Ulcer"}`))
	require.NoError(t, co.Start())
	sched.Tick()
	co.Stop()

	// Second mount 10 minutes later recovers it intact.
	clock.Advance(10 * time.Minute)
	co2 := newTestCoordinator(t, store, clock, &manualScheduler{}, staticCapture(`{}`))
	snap, err := co2.Recover(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.JSONEq(t, `{"wound_type":"Venous Ulcer"}`, string(snap.Payload))
}

func TestCoordinatorStaleSnapshotNotOffered(t *testing.T) {
	store := NewMemoryStore()
	clock := newFakeClock()
	sched := &manualScheduler{}

	co := newTestCoordinator(t, store, clock, sched, staticCapture(`{"wound_type":"Venous Ulcer"}`))
	require.NoError(t, co.Start())
	sched.Tick()
	co.Stop()

	clock.Advance(31 * time.Minute)
	co2 := newTestCoordinator(t, store, clock, &manualScheduler{}, staticCapture(`{}`))
	snap, err := co2.Recover(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap, "stale snapshot must not be offered")

	// The data still physically exists in the store.
	_, err = store.Read(context.Background(), testKey())
	assert.NoError(t, err)
}

func TestCoordinatorTimerHeldWhilePromptPending(t *testing.T) {
	store := NewMemoryStore()
	clock := newFakeClock()
	require.NoError(t, store.Write(context.Background(), &Snapshot{
		Key:     testKey(),
		Payload: json.RawMessage(`{"saved":"earlier"}`),
		SavedAt: clock.Now().Add(-5 * time.Minute),
	}))

	sched := &manualScheduler{}
	co := newTestCoordinator(t, store, clock, sched, staticCapture(`{"saved":"now"}`))

	snap, err := co.Recover(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	// The timer must not start while the decision is pending, otherwise a
	// fresh autosave would overwrite the snapshot under decision.
	err = co.Start()
	assert.Error(t, err)
	assert.Equal(t, StateIdle, co.State())

	payload, err := co.Restore()
	require.NoError(t, err)
	assert.JSONEq(t, `{"saved":"earlier"}`, string(payload))
	assert.Equal(t, StateScheduled, co.State())
}

func TestCoordinatorDiscardDoesNotReprompt(t *testing.T) {
	store := NewMemoryStore()
	clock := newFakeClock()
	require.NoError(t, store.Write(context.Background(), &Snapshot{
		Key:     testKey(),
		Payload: json.RawMessage(`{"saved":"earlier"}`),
		SavedAt: clock.Now().Add(-time.Minute),
	}))

	co := newTestCoordinator(t, store, clock, &manualScheduler{}, staticCapture(`{}`))
	snap, err := co.Recover(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.NoError(t, co.Discard(context.Background()))
	co.Stop()

	// Second mount: the discarded snapshot must not be offered again.
	co2 := newTestCoordinator(t, store, clock, &manualScheduler{}, staticCapture(`{}`))
	snap, err = co2.Recover(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestCoordinatorErrorStateAndRetry(t *testing.T) {
	store := &failingStore{Store: NewMemoryStore()}
	clock := newFakeClock()
	sched := &manualScheduler{}
	co := newTestCoordinator(t, store, clock, sched, staticCapture(`{"v":1}`))
	require.NoError(t, co.Start())

	store.setFail(true)
	sched.Tick()
	assert.Equal(t, StateError, co.State())
	assert.Error(t, co.Err())

	// Next tick silently retries and recovers.
	store.setFail(false)
	clock.Advance(30 * time.Second)
	sched.Tick()
	assert.Equal(t, StateScheduled, co.State())
	assert.NoError(t, co.Err())
	assert.Equal(t, clock.Now(), co.LastSavedAt())
}

func TestCoordinatorCaptureFailureIsSaveFailure(t *testing.T) {
	store := NewMemoryStore()
	sched := &manualScheduler{}
	co := newTestCoordinator(t, store, newFakeClock(), sched, func() (json.RawMessage, error) {
		return nil, errors.New("form state unavailable")
	})
	require.NoError(t, co.Start())
	sched.Tick()
	assert.Equal(t, StateError, co.State())
}

func TestCoordinatorStopCancelsTimer(t *testing.T) {
	store := NewMemoryStore()
	sched := &manualScheduler{}
	co := newTestCoordinator(t, store, newFakeClock(), sched, staticCapture(`{}`))
	require.NoError(t, co.Start())

	co.Stop()
	assert.True(t, sched.Cancelled())
	assert.Equal(t, StateIdle, co.State())

	// A tick after stop must not write.
	sched.Tick()
	_, err := store.Read(context.Background(), testKey())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCoordinatorClearDeletesSnapshot(t *testing.T) {
	store := NewMemoryStore()
	sched := &manualScheduler{}
	co := newTestCoordinator(t, store, newFakeClock(), sched, staticCapture(`{"v":1}`))
	require.NoError(t, co.Start())
	sched.Tick()

	require.NoError(t, co.Clear(context.Background()))
	_, err := store.Read(context.Background(), testKey())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, StateIdle, co.State())
}

func TestCoordinatorStartIdempotent(t *testing.T) {
	co := newTestCoordinator(t, NewMemoryStore(), newFakeClock(), &manualScheduler{}, staticCapture(`{}`))
	require.NoError(t, co.Start())
	require.NoError(t, co.Start())
	assert.Equal(t, StateScheduled, co.State())
}

func TestNewCoordinatorValidation(t *testing.T) {
	_, err := NewCoordinator(NewMemoryStore(), Key{}, staticCapture(`{}`), Options{})
	assert.Error(t, err)

	_, err = NewCoordinator(NewMemoryStore(), testKey(), nil, Options{})
	assert.Error(t, err)
}
