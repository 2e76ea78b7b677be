package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/voyager/internal/sim"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "voyage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RecordAndReadBack(t *testing.T) {
	j := openTestJournal(t)
	rec := j.NewRun()
	require.NotEmpty(t, rec.RunID())

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, rec.Record(sim.DrainedEvent{
		Seq: 1, Unit: "Life Support", Resource: "Energy",
		Status: sim.StatusInsufficient, Priority: sim.PriorityHigh,
		Magnitude: 7, At: at,
	}))
	require.NoError(t, rec.Record(sim.DrainedEvent{
		Seq: 2, Unit: "Propulsion", Resource: "Distance",
		Status: sim.StatusCapacity, Priority: sim.PriorityLow,
		Magnitude: 25, At: at.Add(time.Second),
	}))

	entries, err := j.Events(rec.RunID())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, "Life Support", entries[0].Unit)
	assert.Equal(t, "Energy", entries[0].Resource)
	assert.Equal(t, "INSUFFICIENT", entries[0].Status)
	assert.Equal(t, "HIGH", entries[0].Priority)
	assert.Equal(t, 7, entries[0].Magnitude)
	assert.True(t, entries[0].At.Equal(at))

	assert.Equal(t, int64(2), entries[1].Seq)
	assert.Equal(t, "CAPACITY", entries[1].Status)
}

func TestJournal_SeparatesRuns(t *testing.T) {
	j := openTestJournal(t)

	first := j.NewRun()
	second := j.NewRun()
	require.NotEqual(t, first.RunID(), second.RunID())

	now := time.Now().UTC()
	require.NoError(t, first.Record(sim.DrainedEvent{Seq: 1, Unit: "Crew", Resource: "Oxygen", Status: sim.StatusEmpty, Priority: sim.PriorityHigh, Magnitude: 1, At: now}))
	require.NoError(t, second.Record(sim.DrainedEvent{Seq: 1, Unit: "Crew", Resource: "Oxygen", Status: sim.StatusEmpty, Priority: sim.PriorityHigh, Magnitude: 1, At: now}))

	runs, err := j.Runs()
	require.NoError(t, err)
	assert.Equal(t, []string{first.RunID(), second.RunID()}, runs, "UUIDv7 run ids sort oldest first")

	entries, err := j.Events(first.RunID())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, first.RunID(), entries[0].RunID)

	all, err := j.Events("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestJournal_OpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voyage.db")

	j1, err := Open(path)
	require.NoError(t, err)
	rec := j1.NewRun()
	require.NoError(t, rec.Record(sim.DrainedEvent{Seq: 1, Unit: "Crew", Resource: "Oxygen", Status: sim.StatusEmpty, Priority: sim.PriorityHigh, Magnitude: 1, At: time.Now().UTC()}))
	require.NoError(t, j1.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	entries, err := j2.Events("")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "reopening must not drop rows")
}

func TestJournal_EventsEmpty(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.Events("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
