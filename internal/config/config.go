package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/voyager/internal/sim"
)

//go:embed default.yaml
var defaultScenarioYAML []byte

// Scenario is the fixed configuration of a simulation run: every resource
// and every unit, declared in order. Nothing in it changes after Build.
type Scenario struct {
	Resources []ResourceConfig `yaml:"resources"`
	Units     []UnitConfig     `yaml:"units"`
}

// ResourceConfig declares one bounded resource counter.
type ResourceConfig struct {
	Name     string `yaml:"name"`
	Amount   int    `yaml:"amount"`
	Capacity int    `yaml:"capacity"`
}

// UnitConfig declares one unit's fixed conversion rule. A missing consumes
// or produces binding means the unit consumes or produces nothing.
type UnitConfig struct {
	Name         string         `yaml:"name"`
	Consumes     *BindingConfig `yaml:"consumes,omitempty"`
	Produces     *BindingConfig `yaml:"produces,omitempty"`
	ProcessingMS int            `yaml:"processing_ms"`
}

// BindingConfig names a declared resource and a per-cycle quantity.
type BindingConfig struct {
	Resource string `yaml:"resource"`
	Amount   int    `yaml:"amount"`
}

// Default returns the embedded stock scenario.
func Default() (*Scenario, error) {
	return Parse(defaultScenarioYAML)
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates scenario YAML. The raw document is checked
// against the embedded CUE schema first, then decoded and cross-checked:
// every unit binding must name a declared resource.
func Parse(data []byte) (*Scenario, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}

	sc.normalize()
	if err := sc.crossCheck(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// normalize folds all names to NFC so the coordinator's name-keyed terminal
// rules and the cross-reference checks use a stable representation.
func (sc *Scenario) normalize() {
	for i := range sc.Resources {
		sc.Resources[i].Name = norm.NFC.String(sc.Resources[i].Name)
	}
	for i := range sc.Units {
		sc.Units[i].Name = norm.NFC.String(sc.Units[i].Name)
		if sc.Units[i].Consumes != nil {
			sc.Units[i].Consumes.Resource = norm.NFC.String(sc.Units[i].Consumes.Resource)
		}
		if sc.Units[i].Produces != nil {
			sc.Units[i].Produces.Resource = norm.NFC.String(sc.Units[i].Produces.Resource)
		}
	}
}

func (sc *Scenario) crossCheck() error {
	declared := make(map[string]bool, len(sc.Resources))
	for _, r := range sc.Resources {
		if declared[r.Name] {
			return fmt.Errorf("duplicate resource %q", r.Name)
		}
		declared[r.Name] = true
	}

	seen := make(map[string]bool, len(sc.Units))
	for _, u := range sc.Units {
		if seen[u.Name] {
			return fmt.Errorf("duplicate unit %q", u.Name)
		}
		seen[u.Name] = true

		if u.Consumes != nil && !declared[u.Consumes.Resource] {
			return fmt.Errorf("unit %q consumes undeclared resource %q", u.Name, u.Consumes.Resource)
		}
		if u.Produces != nil && !declared[u.Produces.Resource] {
			return fmt.Errorf("unit %q produces undeclared resource %q", u.Name, u.Produces.Resource)
		}
	}
	return nil
}

// Build constructs the simulation's fixed state from the scenario: the
// resource registry, the shared event queue, and every unit wired to it.
// Allocation happens here, strictly before any goroutine starts.
func (sc *Scenario) Build(rt Runtime) (*sim.Registry, []*sim.Unit, *sim.Queue, error) {
	resources := make([]*sim.Resource, len(sc.Resources))
	for i, rc := range sc.Resources {
		r, err := sim.NewResource(rc.Name, rc.Amount, rc.Capacity)
		if err != nil {
			return nil, nil, nil, err
		}
		resources[i] = r
	}

	registry, err := sim.NewRegistry(resources...)
	if err != nil {
		return nil, nil, nil, err
	}

	queue := sim.NewQueue()
	units := make([]*sim.Unit, len(sc.Units))
	for i, uc := range sc.Units {
		consumed, err := sc.bind(registry, uc.Consumes)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("unit %q: %w", uc.Name, err)
		}
		produced, err := sc.bind(registry, uc.Produces)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("unit %q: %w", uc.Name, err)
		}
		units[i] = sim.NewUnit(uc.Name, consumed, produced,
			time.Duration(uc.ProcessingMS)*time.Millisecond, queue,
			sim.WithRetryInterval(rt.RetryInterval))
	}

	return registry, units, queue, nil
}

func (sc *Scenario) bind(registry *sim.Registry, b *BindingConfig) (sim.ResourceAmount, error) {
	if b == nil {
		return sim.ResourceAmount{}, nil
	}
	r, ok := registry.Lookup(b.Resource)
	if !ok {
		// crossCheck catches this earlier; kept as a guard for direct Build calls.
		return sim.ResourceAmount{}, fmt.Errorf("undeclared resource %q", b.Resource)
	}
	return sim.ResourceAmount{Resource: r, Amount: b.Amount}, nil
}
