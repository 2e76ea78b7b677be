package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/voyager/internal/sim"
)

func TestDefault_StockScenario(t *testing.T) {
	sc, err := Default()
	require.NoError(t, err)

	require.Len(t, sc.Resources, 4)
	assert.Equal(t, ResourceConfig{Name: "Fuel", Amount: 1000, Capacity: 1000}, sc.Resources[0])
	assert.Equal(t, ResourceConfig{Name: "Oxygen", Amount: 20, Capacity: 50}, sc.Resources[1])
	assert.Equal(t, ResourceConfig{Name: "Energy", Amount: 30, Capacity: 50}, sc.Resources[2])
	assert.Equal(t, ResourceConfig{Name: "Distance", Amount: 0, Capacity: 5000}, sc.Resources[3])

	require.Len(t, sc.Units, 4)
	crew := sc.Units[2]
	assert.Equal(t, "Crew", crew.Name)
	require.NotNil(t, crew.Consumes)
	assert.Equal(t, "Oxygen", crew.Consumes.Resource)
	assert.Nil(t, crew.Produces, "crew consumes but produces nothing")
}

func TestParse_RejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty document", ""},
		{"no resources", "units:\n  - {name: A, processing_ms: 1}\n"},
		{"no units", "resources:\n  - {name: Fuel, amount: 0, capacity: 1}\n"},
		{"negative amount", `
resources:
  - {name: Fuel, amount: -1, capacity: 10}
units:
  - {name: A, processing_ms: 1}
`},
		{"capacity below amount", `
resources:
  - {name: Fuel, amount: 20, capacity: 10}
units:
  - {name: A, processing_ms: 1}
`},
		{"unnamed resource", `
resources:
  - {name: "", amount: 0, capacity: 10}
units:
  - {name: A, processing_ms: 1}
`},
		{"missing processing time", `
resources:
  - {name: Fuel, amount: 0, capacity: 10}
units:
  - {name: A}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_RejectsUndeclaredResourceReference(t *testing.T) {
	_, err := Parse([]byte(`
resources:
  - {name: Fuel, amount: 100, capacity: 100}
units:
  - name: Propulsion
    consumes: {resource: Fuel, amount: 5}
    produces: {resource: Distance, amount: 25}
    processing_ms: 50
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Distance")
}

func TestParse_RejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`
resources:
  - {name: Fuel, amount: 100, capacity: 100}
  - {name: Fuel, amount: 50, capacity: 100}
units:
  - {name: A, processing_ms: 1}
`))
	assert.Error(t, err)

	_, err = Parse([]byte(`
resources:
  - {name: Fuel, amount: 100, capacity: 100}
units:
  - {name: A, processing_ms: 1}
  - {name: A, processing_ms: 2}
`))
	assert.Error(t, err)
}

func TestParse_NormalizesNamesToNFC(t *testing.T) {
	// "Óleo" with the accent as a combining mark must match its precomposed
	// declaration.
	sc, err := Parse([]byte(`
resources:
  - {name: "Óleo", amount: 10, capacity: 10}
units:
  - name: Refinery
    consumes: {resource: "Óleo", amount: 1}
    processing_ms: 1
`))
	require.NoError(t, err)
	assert.Equal(t, "Óleo", sc.Resources[0].Name)
}

func TestBuild_WiresUnitsToDeclaredResources(t *testing.T) {
	sc, err := Default()
	require.NoError(t, err)

	rt := Runtime{RetryInterval: time.Millisecond}
	registry, units, queue, err := sc.Build(rt)
	require.NoError(t, err)
	require.NotNil(t, queue)

	assert.Equal(t, 4, registry.Len())
	require.Len(t, units, 4)

	distance, ok := registry.Lookup("Distance")
	require.True(t, ok)
	assert.True(t, units[0].Produces(distance), "Propulsion produces Distance")
	assert.False(t, units[2].Produces(distance))

	for _, u := range units {
		assert.Equal(t, sim.ModeStandard, u.Mode())
	}
}

func TestRuntimeFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		rt, err := RuntimeFromEnv()
		require.NoError(t, err)
		assert.Equal(t, 100*time.Millisecond, rt.RetryInterval)
		assert.Equal(t, 10*time.Millisecond, rt.PollInterval)
		assert.Equal(t, time.Second, rt.DisplayInterval)
		assert.Empty(t, rt.JournalPath)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("VOYAGER_RETRY_INTERVAL", "5ms")
		t.Setenv("VOYAGER_JOURNAL", "/tmp/voyage.db")

		rt, err := RuntimeFromEnv()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Millisecond, rt.RetryInterval)
		assert.Equal(t, "/tmp/voyage.db", rt.JournalPath)
	})

	t.Run("invalid duration", func(t *testing.T) {
		t.Setenv("VOYAGER_RETRY_INTERVAL", "soon")

		_, err := RuntimeFromEnv()
		assert.Error(t, err)
	})
}
