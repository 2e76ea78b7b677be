package sim

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Simulation wires the registry, units, queue, and coordinator together and
// owns the goroutine lifecycle: one goroutine per unit plus the coordinator.
type Simulation struct {
	registry *Registry
	units    []*Unit
	queue    *Queue
	coord    *Coordinator
}

// New assembles a simulation. The units must already share the given queue.
func New(registry *Registry, units []*Unit, queue *Queue, opts ...CoordinatorOption) *Simulation {
	return &Simulation{
		registry: registry,
		units:    units,
		queue:    queue,
		coord:    NewCoordinator(units, queue, opts...),
	}
}

// Coordinator exposes the coordinator, mainly for tests and the CLI's
// signal handling.
func (s *Simulation) Coordinator() *Coordinator {
	return s.coord
}

// Run starts every unit and the coordinator and blocks until all of them
// have exited. The simulation stops when a terminal event flips the running
// flag (units are broadcast ModeTerminate and the shared context is
// cancelled to cut their sleeps short) or when the parent context is
// cancelled. A run that terminated through an event is a success; context
// cancellation is reported as-is to the caller.
func (s *Simulation) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	for _, u := range s.units {
		g.Go(func() error {
			u.Run(ctx)
			return nil
		})
	}

	g.Go(func() error {
		err := s.coord.Run(ctx)
		// Wake sleeping units so they observe ModeTerminate promptly.
		cancel()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop requests cooperative termination, as if a terminal event had been
// drained. Safe to call from any goroutine; used by the CLI's signal
// handler.
func (s *Simulation) Stop(reason string) {
	s.coord.Terminate(reason)
}

// Snapshot captures the display collaborator's view: every resource and
// every unit's current mode. Resource copies are taken under their own
// locks; the snapshot is consistent per resource, not across resources.
type Snapshot struct {
	Resources []ResourceSnapshot
	Units     []UnitSnapshot
}

// Snapshot returns the current display view in declaration order.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Resources: s.registry.Snapshot(),
		Units:     make([]UnitSnapshot, len(s.units)),
	}
	for i, u := range s.units {
		snap.Units[i] = u.Snapshot()
	}
	return snap
}
