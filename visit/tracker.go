package visit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store is the per-session key/value storage the tracker reads and writes.
// Get reports ok=false when the key has never been set for sessionID.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, sessionID, key, value string) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Result is the outcome of one tracked request.
type Result struct {
	Count int
	State SessionState
	// Reset is true when the stored state was unreadable and tracking
	// started over from a first visit.
	Reset bool
}

// Tracker applies HandleVisit to the state held in a Store.
type Tracker struct {
	store Store
	clock Clock
}

// NewTracker returns a Tracker over store. A nil clock means SystemClock.
func NewTracker(store Store, clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock
	}
	return &Tracker{store: store, clock: clock}
}

// Track counts a request from sessionID and persists the new state.
// Malformed stored state is treated as no state at all.
func (t *Tracker) Track(ctx context.Context, sessionID string) (Result, error) {
	now := t.clock.Now()

	var res Result
	prior, err := t.Load(ctx, sessionID, now.Location())
	switch {
	case errors.Is(err, ErrMalformedSessionState):
		prior = nil
		res.Reset = true
	case err != nil:
		return Result{}, err
	}

	res.Count, res.State = HandleVisit(prior, now)
	if err := t.Save(ctx, sessionID, res.State); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Load reads the stored state for sessionID. It returns nil, nil when no
// last_visit has been stored. A missing visits value counts as 1.
func (t *Tracker) Load(ctx context.Context, sessionID string, loc *time.Location) (*SessionState, error) {
	last, ok, err := t.store.Get(ctx, sessionID, KeyLastVisit)
	if err != nil {
		return nil, fmt.Errorf("visit: read %s: %w", KeyLastVisit, err)
	}
	if !ok {
		return nil, nil
	}
	visits, ok, err := t.store.Get(ctx, sessionID, KeyVisits)
	if err != nil {
		return nil, fmt.Errorf("visit: read %s: %w", KeyVisits, err)
	}
	if !ok {
		visits = "1"
	}
	s, err := ParseState(visits, last, loc)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes s for sessionID.
func (t *Tracker) Save(ctx context.Context, sessionID string, s SessionState) error {
	visits, last := FormatState(s)
	if err := t.store.Set(ctx, sessionID, KeyVisits, visits); err != nil {
		return fmt.Errorf("visit: write %s: %w", KeyVisits, err)
	}
	if err := t.store.Set(ctx, sessionID, KeyLastVisit, last); err != nil {
		return fmt.Errorf("visit: write %s: %w", KeyLastVisit, err)
	}
	return nil
}
