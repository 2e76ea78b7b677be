package sim

import (
	"fmt"
	"sync"
)

// Resource is a named counter bounded by a fixed capacity.
//
// Every unit that names the resource in its conversion rule mutates it
// concurrently; the mutex makes each read-check-write sequence atomic so
// 0 <= amount <= capacity holds at every externally visible point.
type Resource struct {
	name     string
	capacity int

	mu     sync.Mutex
	amount int
}

// NewResource creates a resource with an initial amount and a fixed capacity.
func NewResource(name string, amount, capacity int) (*Resource, error) {
	if name == "" {
		return nil, fmt.Errorf("resource name must not be empty")
	}
	if amount < 0 {
		return nil, fmt.Errorf("resource %q: amount %d must not be negative", name, amount)
	}
	if capacity < amount {
		return nil, fmt.Errorf("resource %q: capacity %d below initial amount %d", name, capacity, amount)
	}
	return &Resource{name: name, capacity: capacity, amount: amount}, nil
}

// Name returns the resource name. Immutable after creation.
func (r *Resource) Name() string { return r.name }

// Capacity returns the maximum amount the resource can hold.
func (r *Resource) Capacity() int { return r.capacity }

// Consume atomically checks availability and subtracts n.
//
// Returns StatusOK and subtracts exactly n when the current amount covers the
// request. Otherwise nothing is subtracted and the result distinguishes a
// fully depleted counter (StatusEmpty) from a short one (StatusInsufficient).
func (r *Resource) Consume(n int) Status {
	if n <= 0 {
		return StatusOK
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.amount >= n {
		r.amount -= n
		return StatusOK
	}
	if r.amount == 0 {
		return StatusEmpty
	}
	return StatusInsufficient
}

// Deposit atomically adds up to n, bounded by the remaining headroom.
//
// Returns how much was actually stored. When the full n fits the status is
// StatusOK; a partial or zero store returns StatusCapacity and leaves the
// caller to retry the remainder.
func (r *Resource) Deposit(n int) (int, Status) {
	if n <= 0 {
		return 0, StatusOK
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	headroom := r.capacity - r.amount
	if headroom >= n {
		r.amount += n
		return n, StatusOK
	}
	if headroom > 0 {
		r.amount = r.capacity
		return headroom, StatusCapacity
	}
	return 0, StatusCapacity
}

// Snapshot returns a consistent point-in-time view of the resource, taken
// under the same lock the units use. Safe to call from the display loop while
// the simulation is running.
func (r *Resource) Snapshot() ResourceSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ResourceSnapshot{Name: r.name, Amount: r.amount, Capacity: r.capacity}
}

// ResourceSnapshot is an immutable copy of a resource's state.
type ResourceSnapshot struct {
	Name     string
	Amount   int
	Capacity int
}

// ResourceAmount binds a resource to the fixed quantity a unit consumes or
// produces per cycle. A nil Resource means "consumes/produces nothing".
// Immutable once attached to a unit.
type ResourceAmount struct {
	Resource *Resource
	Amount   int
}

// Registry is the ordered, fixed set of resources in a simulation.
// Built once before any goroutine starts and never resized afterwards.
type Registry struct {
	ordered []*Resource
	byName  map[string]*Resource
}

// NewRegistry creates a registry from resources in declaration order.
func NewRegistry(resources ...*Resource) (*Registry, error) {
	reg := &Registry{
		ordered: make([]*Resource, 0, len(resources)),
		byName:  make(map[string]*Resource, len(resources)),
	}
	for _, r := range resources {
		if _, dup := reg.byName[r.name]; dup {
			return nil, fmt.Errorf("duplicate resource %q", r.name)
		}
		reg.ordered = append(reg.ordered, r)
		reg.byName[r.name] = r
	}
	return reg, nil
}

// Lookup returns the resource with the given name.
func (g *Registry) Lookup(name string) (*Resource, bool) {
	r, ok := g.byName[name]
	return r, ok
}

// Len returns the number of registered resources.
func (g *Registry) Len() int { return len(g.ordered) }

// Snapshot returns point-in-time copies of every resource in declaration
// order. Each copy is taken under that resource's own lock; the slice as a
// whole is not a cross-resource transaction.
func (g *Registry) Snapshot() []ResourceSnapshot {
	out := make([]ResourceSnapshot, len(g.ordered))
	for i, r := range g.ordered {
		out[i] = r.Snapshot()
	}
	return out
}
