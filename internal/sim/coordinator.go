package sim

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Terminal conditions are keyed by resource name: depletion of the life
// resource ends the voyage in failure, filling the goal resource ends it in
// success. Both terminate every unit.
const (
	// DefaultLifeResource is the resource whose EMPTY report terminates the run.
	DefaultLifeResource = "Oxygen"
	// DefaultGoalResource is the resource whose CAPACITY report terminates the run.
	DefaultGoalResource = "Distance"
)

// DefaultPollInterval is how long the coordinator yields between drain
// passes when the queue came up empty.
const DefaultPollInterval = 10 * time.Millisecond

// Coordinator is the sole consumer of the event queue. Each pass drains the
// queue to empty, classifies every event, and broadcasts mode changes to the
// affected units.
type Coordinator struct {
	units    []*Unit
	queue    *Queue
	clock    *Clock
	logger   *slog.Logger
	recorder Recorder
	observer func()
	poll     time.Duration

	lifeResource string
	goalResource string

	running atomic.Bool
}

// CoordinatorOption configures a coordinator at construction.
type CoordinatorOption func(*Coordinator)

// WithRecorder attaches a recorder that receives every drained event.
func WithRecorder(r Recorder) CoordinatorOption {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithObserver attaches a callback invoked once per coordination pass,
// before the drain. The display collaborator hooks its rate-limited render
// here. The callback runs on the coordinator goroutine and must not block.
func WithObserver(fn func()) CoordinatorOption {
	return func(c *Coordinator) {
		c.observer = fn
	}
}

// WithPollInterval overrides the yield between empty drain passes.
func WithPollInterval(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.poll = d
	}
}

// WithTerminalRules overrides the resource names that trigger whole-run
// termination.
func WithTerminalRules(life, goal string) CoordinatorOption {
	return func(c *Coordinator) {
		c.lifeResource = life
		c.goalResource = goal
	}
}

// NewCoordinator creates a coordinator over the given units and queue.
// The running flag starts true and flips false exactly once.
func NewCoordinator(units []*Unit, queue *Queue, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		units:        units,
		queue:        queue,
		clock:        NewClock(),
		logger:       slog.Default(),
		poll:         DefaultPollInterval,
		lifeResource: DefaultLifeResource,
		goalResource: DefaultGoalResource,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.running.Store(true)
	return c
}

// Running reports whether the simulation is still live.
func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// EventsDrained returns how many events have been classified so far.
func (c *Coordinator) EventsDrained() int64 {
	return c.clock.Current()
}

// Run executes coordination passes until a terminal event flips running to
// false or the context is cancelled. Must be called from exactly one
// goroutine. A final drain after the loop ensures already-queued events are
// still classified and journaled.
func (c *Coordinator) Run(ctx context.Context) error {
	for c.running.Load() {
		if ctx.Err() != nil {
			c.Terminate("context cancelled")
			break
		}
		if c.observer != nil {
			c.observer()
		}
		if c.Drain() == 0 {
			c.yield(ctx)
		}
	}
	c.Drain()
	return ctx.Err()
}

// Drain pops events until the queue is empty, handling each in priority
// order. An empty queue is not an error. Returns the number of events
// processed.
func (c *Coordinator) Drain() int {
	n := 0
	for {
		ev, ok := c.queue.Pop()
		if !ok {
			return n
		}
		n++
		c.handle(ev)
	}
}

// handle stamps, records, classifies, and reacts to one event.
//
// Classification:
//   - EMPTY on the life resource or CAPACITY on the goal resource terminates
//     every unit, regardless of what each unit produces.
//   - LOW, EMPTY, and INSUFFICIENT set FAST on units producing the scarce
//     resource.
//   - CAPACITY elsewhere sets SLOW on units producing the saturated resource.
//   - Anything else is observed and journaled with no mode change.
//
// Within one drain, a later event overwrites an earlier event's effect on
// the same unit: the last event processed wins.
func (c *Coordinator) handle(ev Event) {
	drained := DrainedEvent{
		Seq:       c.clock.Next(),
		Status:    ev.Status,
		Priority:  ev.Priority,
		Magnitude: ev.Magnitude,
		At:        time.Now().UTC(),
	}
	if ev.Unit != nil {
		drained.Unit = ev.Unit.Name()
	}
	if ev.Resource != nil {
		drained.Resource = ev.Resource.Name()
	}

	c.logger.Info("event drained",
		"seq", drained.Seq,
		"unit", drained.Unit,
		"resource", drained.Resource,
		"status", drained.Status.String(),
		"priority", drained.Priority.String(),
		"magnitude", drained.Magnitude,
	)
	if c.recorder != nil {
		if err := c.recorder.Record(drained); err != nil {
			c.logger.Error("journal record failed", "seq", drained.Seq, "error", err)
		}
	}

	lifeDepleted := ev.Status == StatusEmpty && drained.Resource == c.lifeResource
	goalReached := ev.Status == StatusCapacity && drained.Resource == c.goalResource

	switch {
	case lifeDepleted:
		c.Terminate(c.lifeResource + " depleted")
	case goalReached:
		c.Terminate("destination reached: " + c.goalResource + " at capacity")
	case ev.Status == StatusLow || ev.Status == StatusEmpty || ev.Status == StatusInsufficient:
		c.broadcast(ev.Resource, ModeFast)
	case ev.Status == StatusCapacity:
		c.broadcast(ev.Resource, ModeSlow)
	}
}

// broadcast sets the mode on every unit whose produced resource matches.
func (c *Coordinator) broadcast(r *Resource, mode RunMode) {
	for _, u := range c.units {
		if u.Produces(r) {
			u.SetMode(mode)
		}
	}
}

// Terminate sets every unit to ModeTerminate and flips running to false.
// Idempotent: only the first call logs the reason.
func (c *Coordinator) Terminate(reason string) {
	if c.running.CompareAndSwap(true, false) {
		c.logger.Info("terminating all units", "reason", reason)
	}
	for _, u := range c.units {
		u.SetMode(ModeTerminate)
	}
}

// yield sleeps for the poll interval, returning early on cancellation.
func (c *Coordinator) yield(ctx context.Context) {
	if c.poll <= 0 {
		return
	}
	timer := time.NewTimer(c.poll)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
