// Package sim implements the voyager resource-economy simulation core.
//
// The simulation is a closed loop of producer/consumer units working against
// shared, capacity-bounded resource counters, observed by a single
// coordinator.
//
// ARCHITECTURE:
//
// One goroutine per unit, plus one coordinator goroutine:
//  1. Each unit repeatedly converts its input resource into a private buffer,
//     then flushes the buffer into its output resource.
//  2. Failed conversions and failed/partial stores are reported as events on
//     a shared priority queue.
//  3. The coordinator drains the queue to empty on each pass, classifies
//     every event, and adjusts unit run modes (or terminates the run).
//
// Thread-safety model:
//   - Each Resource guards its own (amount, capacity) pair with a mutex; the
//     check-and-subtract in convert and the check-and-add in store are atomic
//     with respect to every other unit.
//   - The event queue has its own lock, independent of resource locks, so
//     queue traffic never contends with unrelated resource mutations.
//   - A unit's run mode is an atomic written by the coordinator and read by
//     the unit at the top of each cycle.
//
// Shutdown is cooperative: the coordinator broadcasts ModeTerminate and every
// unit exits at its next mode check. There is no preemption; a unit that is
// mid-sleep finishes (or has its sleep cut by context cancellation) and then
// observes the terminal mode.
package sim
