package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulation_TerminatesWhenLifeResourceDepletes(t *testing.T) {
	oxygen, err := NewResource("Oxygen", 0, 50)
	require.NoError(t, err)
	reg, err := NewRegistry(oxygen)
	require.NoError(t, err)

	q := NewQueue()
	crew := NewUnit("Crew",
		ResourceAmount{Resource: oxygen, Amount: 1},
		ResourceAmount{}, time.Millisecond, q,
		WithRetryInterval(time.Millisecond))

	s := New(reg, []*Unit{crew}, q,
		WithLogger(quietLogger()),
		WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "run must finish through termination, not timeout")

	assert.False(t, s.Coordinator().Running())
	assert.Equal(t, ModeTerminate, crew.Mode())
}

func TestSimulation_TerminatesWhenGoalResourceFills(t *testing.T) {
	fuel, err := NewResource("Fuel", 1000, 1000)
	require.NoError(t, err)
	distance, err := NewResource("Distance", 90, 100)
	require.NoError(t, err)
	reg, err := NewRegistry(fuel, distance)
	require.NoError(t, err)

	q := NewQueue()
	propulsion := NewUnit("Propulsion",
		ResourceAmount{Resource: fuel, Amount: 5},
		ResourceAmount{Resource: distance, Amount: 25}, time.Millisecond, q,
		WithRetryInterval(time.Millisecond))

	s := New(reg, []*Unit{propulsion}, q,
		WithLogger(quietLogger()),
		WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, ctx.Err())

	assert.False(t, s.Coordinator().Running())
	assert.Equal(t, 100, distance.Snapshot().Amount, "goal resource ends exactly at capacity")
}

func TestSimulation_StopRequestsCooperativeShutdown(t *testing.T) {
	fuel, err := NewResource("Fuel", 1000, 1000)
	require.NoError(t, err)
	energy, err := NewResource("Energy", 0, 100000)
	require.NoError(t, err)
	reg, err := NewRegistry(fuel, energy)
	require.NoError(t, err)

	q := NewQueue()
	generator := NewUnit("Generator",
		ResourceAmount{},
		ResourceAmount{Resource: energy, Amount: 1}, time.Millisecond, q,
		WithRetryInterval(time.Millisecond))

	s := New(reg, []*Unit{generator}, q,
		WithLogger(quietLogger()),
		WithPollInterval(time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	s.Stop("test shutdown")

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("simulation did not stop after Stop")
	}
	assert.Equal(t, ModeTerminate, generator.Mode())
}

func TestSimulation_SnapshotReflectsState(t *testing.T) {
	fuel, err := NewResource("Fuel", 1000, 1000)
	require.NoError(t, err)
	oxygen, err := NewResource("Oxygen", 20, 50)
	require.NoError(t, err)
	reg, err := NewRegistry(fuel, oxygen)
	require.NoError(t, err)

	q := NewQueue()
	crew := testUnit(t, "Crew", ResourceAmount{Resource: oxygen, Amount: 1}, ResourceAmount{}, q)
	crew.SetMode(ModeFast)

	s := New(reg, []*Unit{crew}, q, WithLogger(quietLogger()))

	snap := s.Snapshot()
	require.Len(t, snap.Resources, 2)
	assert.Equal(t, ResourceSnapshot{Name: "Fuel", Amount: 1000, Capacity: 1000}, snap.Resources[0])
	assert.Equal(t, ResourceSnapshot{Name: "Oxygen", Amount: 20, Capacity: 50}, snap.Resources[1])
	require.Len(t, snap.Units, 1)
	assert.Equal(t, UnitSnapshot{Name: "Crew", Mode: ModeFast}, snap.Units[0])
}

// Full voyage smoke test: the stock scenario must always reach one of its
// two designed terminal conditions.
func TestSimulation_StockScenarioReachesTerminalState(t *testing.T) {
	fuel, err := NewResource("Fuel", 1000, 1000)
	require.NoError(t, err)
	oxygen, err := NewResource("Oxygen", 20, 50)
	require.NoError(t, err)
	energy, err := NewResource("Energy", 30, 50)
	require.NoError(t, err)
	distance, err := NewResource("Distance", 0, 500)
	require.NoError(t, err)
	reg, err := NewRegistry(fuel, oxygen, energy, distance)
	require.NoError(t, err)

	q := NewQueue()
	retry := WithRetryInterval(time.Millisecond)
	units := []*Unit{
		NewUnit("Propulsion", ResourceAmount{Resource: fuel, Amount: 5}, ResourceAmount{Resource: distance, Amount: 25}, time.Millisecond, q, retry),
		NewUnit("Life Support", ResourceAmount{Resource: energy, Amount: 7}, ResourceAmount{Resource: oxygen, Amount: 4}, time.Millisecond, q, retry),
		NewUnit("Crew", ResourceAmount{Resource: oxygen, Amount: 1}, ResourceAmount{}, time.Millisecond, q, retry),
		NewUnit("Generator", ResourceAmount{Resource: fuel, Amount: 5}, ResourceAmount{Resource: energy, Amount: 10}, time.Millisecond, q, retry),
	}

	s := New(reg, units, q,
		WithLogger(quietLogger()),
		WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = s.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "stock scenario must terminate on its own")

	for _, u := range units {
		assert.Equal(t, ModeTerminate, u.Mode(), "unit %s", u.Name())
	}
	for _, rs := range s.Snapshot().Resources {
		assert.GreaterOrEqual(t, rs.Amount, 0, "resource %s", rs.Name)
		assert.LessOrEqual(t, rs.Amount, rs.Capacity, "resource %s", rs.Name)
	}
}
