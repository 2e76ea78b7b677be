package sim

import (
	"context"
	"sync/atomic"
	"time"
)

// RunMode is a unit's current speed/lifecycle state. Only the coordinator
// writes it; the owning unit reads it at the top of every cycle.
type RunMode int32

const (
	// ModeStandard runs cycles at the base processing time.
	ModeStandard RunMode = iota
	// ModeSlow doubles the processing time.
	ModeSlow
	// ModeFast halves the processing time.
	ModeFast
	// ModeDisabled holds position: the unit keeps polling its mode but does
	// not touch any resource.
	ModeDisabled
	// ModeTerminate makes the unit exit its loop permanently.
	ModeTerminate
)

func (m RunMode) String() string {
	switch m {
	case ModeStandard:
		return "STANDARD"
	case ModeSlow:
		return "SLOW"
	case ModeFast:
		return "FAST"
	case ModeDisabled:
		return "DISABLED"
	case ModeTerminate:
		return "TERMINATE"
	default:
		return "UNKNOWN"
	}
}

// DefaultRetryInterval is how long a unit backs off after a failed convert
// or a failed/partial store before attempting the next cycle.
const DefaultRetryInterval = 100 * time.Millisecond

// Unit is an autonomous actor with a fixed conversion rule: consume the
// input resource, hold the produced quantity in a private buffer, flush the
// buffer into the output resource.
//
// The buffer and rule fields are owned exclusively by the unit's goroutine.
// The run mode is the only field other actors mutate, and it is atomic.
type Unit struct {
	name     string
	consumed ResourceAmount
	produced ResourceAmount
	procTime time.Duration
	retry    time.Duration
	queue    *Queue

	buffered int
	mode     atomic.Int32
}

// UnitOption configures a unit at construction.
type UnitOption func(*Unit)

// WithRetryInterval overrides the backoff after a failed convert or store.
// Tests use short intervals to keep runs fast.
func WithRetryInterval(d time.Duration) UnitOption {
	return func(u *Unit) {
		u.retry = d
	}
}

// NewUnit creates a unit in ModeStandard. A nil resource in consumed means
// the unit converts without consuming; a nil resource in produced means it
// consumes without producing.
func NewUnit(name string, consumed, produced ResourceAmount, procTime time.Duration, queue *Queue, opts ...UnitOption) *Unit {
	u := &Unit{
		name:     name,
		consumed: consumed,
		produced: produced,
		procTime: procTime,
		retry:    DefaultRetryInterval,
		queue:    queue,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Name returns the unit name.
func (u *Unit) Name() string { return u.name }

// Mode returns the unit's current run mode.
func (u *Unit) Mode() RunMode {
	return RunMode(u.mode.Load())
}

// SetMode updates the unit's run mode. Called by the coordinator; the write
// is visible to the unit's next mode check.
func (u *Unit) SetMode(m RunMode) {
	u.mode.Store(int32(m))
}

// Produces reports whether the unit's output rule targets the resource.
func (u *Unit) Produces(r *Resource) bool {
	return r != nil && u.produced.Resource == r
}

// Run executes cycles until the mode becomes ModeTerminate or the context is
// cancelled. Must be called from exactly one goroutine.
func (u *Unit) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		switch u.Mode() {
		case ModeTerminate:
			return
		case ModeDisabled:
			u.pause(ctx, u.retry)
			continue
		}
		u.cycle(ctx)
	}
}

// cycle performs one convert-then-store pass. At most one event is emitted:
// a failed convert skips the store attempt for this cycle.
func (u *Unit) cycle(ctx context.Context) {
	if u.buffered == 0 {
		if st := u.convert(); st != StatusOK {
			u.queue.Push(Event{
				Unit:      u,
				Resource:  u.consumed.Resource,
				Status:    st,
				Priority:  PriorityHigh,
				Magnitude: u.consumed.Amount,
			})
			u.pause(ctx, u.retry)
			return
		}
		u.simulateProcessing(ctx)
		if u.produced.Resource != nil {
			u.buffered = u.produced.Amount
		} else {
			u.buffered = 0
		}
	}

	if u.buffered > 0 {
		before := u.buffered
		if st := u.store(); st != StatusOK {
			u.queue.Push(Event{
				Unit:      u,
				Resource:  u.produced.Resource,
				Status:    st,
				Priority:  PriorityLow,
				Magnitude: before,
			})
			u.pause(ctx, u.retry)
		}
	}
}

// convert attempts the atomic check-and-subtract on the input resource.
// A nil input resource always converts successfully.
func (u *Unit) convert() Status {
	if u.consumed.Resource == nil {
		return StatusOK
	}
	return u.consumed.Resource.Consume(u.consumed.Amount)
}

// store flushes as much of the buffer as the output resource's headroom
// allows. A nil output resource or an empty buffer trivially succeeds.
func (u *Unit) store() Status {
	if u.produced.Resource == nil || u.buffered == 0 {
		u.buffered = 0
		return StatusOK
	}
	stored, st := u.produced.Resource.Deposit(u.buffered)
	u.buffered -= stored
	return st
}

// simulateProcessing sleeps for the base processing time scaled by the
// current mode: SLOW doubles it, FAST halves it.
func (u *Unit) simulateProcessing(ctx context.Context) {
	d := u.procTime
	switch u.Mode() {
	case ModeSlow:
		d *= 2
	case ModeFast:
		d /= 2
	}
	u.pause(ctx, d)
}

// pause sleeps for d, returning early if the context is cancelled. The
// caller's loop re-checks the mode afterwards, so a cancelled sleep still
// terminates cooperatively.
func (u *Unit) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// UnitSnapshot is an immutable copy of a unit's externally visible state.
type UnitSnapshot struct {
	Name string
	Mode RunMode
}

// Snapshot returns the unit's name and current mode.
func (u *Unit) Snapshot() UnitSnapshot {
	return UnitSnapshot{Name: u.name, Mode: u.Mode()}
}
