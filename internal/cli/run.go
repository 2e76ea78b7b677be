package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/voyager/internal/config"
	"github.com/roach88/voyager/internal/display"
	"github.com/roach88/voyager/internal/journal"
	"github.com/roach88/voyager/internal/sim"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal   string
	ANSI      bool
	NoDisplay bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "Run a voyage scenario until a terminal condition",
		Long: `Run a voyage scenario: all units and the coordinator start together and
the simulation ends when the life resource depletes or the goal resource
fills. Without a scenario file the embedded stock voyage is used.

Example:
  voyager run
  voyager run --journal ./voyage.db ./my-scenario.yaml --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runVoyage(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite event journal (optional)")
	cmd.Flags().BoolVar(&opts.ANSI, "ansi", false, "redraw the status board in place")
	cmd.Flags().BoolVar(&opts.NoDisplay, "no-display", false, "suppress the status board")

	return cmd
}

// runSummary is the run command's result payload.
type runSummary struct {
	Scenario  string            `json:"scenario"`
	RunID     string            `json:"run_id,omitempty"`
	Events    int64             `json:"events"`
	Resources []resourceSummary `json:"resources"`
	Units     []unitSummary     `json:"units"`
}

type resourceSummary struct {
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
	Capacity int    `json:"capacity"`
}

type unitSummary struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
}

func summarize(snap sim.Snapshot) ([]resourceSummary, []unitSummary) {
	resources := make([]resourceSummary, len(snap.Resources))
	for i, r := range snap.Resources {
		resources[i] = resourceSummary{Name: r.Name, Amount: r.Amount, Capacity: r.Capacity}
	}
	units := make([]unitSummary, len(snap.Units))
	for i, u := range snap.Units {
		units[i] = unitSummary{Name: u.Name, Mode: u.Mode.String()}
	}
	return resources, units
}

func runVoyage(opts *RunOptions, scenarioPath string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	rt, err := config.RuntimeFromEnv()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid environment", err)
	}

	// Setup collaborator: all construction happens here, before any
	// goroutine starts.
	scenarioName := "stock"
	var scenario *config.Scenario
	if scenarioPath == "" {
		scenario, err = config.Default()
	} else {
		scenarioName = scenarioPath
		scenario, err = config.Load(scenarioPath)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	registry, units, queue, err := scenario.Build(rt)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build scenario", err)
	}
	logger.Info("scenario loaded", "scenario", scenarioName,
		"resources", registry.Len(), "units", len(units))

	coordOpts := []sim.CoordinatorOption{
		sim.WithLogger(logger),
		sim.WithPollInterval(rt.PollInterval),
	}

	journalPath := opts.Journal
	if journalPath == "" {
		journalPath = rt.JournalPath
	}
	var rec *journal.RunRecorder
	if journalPath != "" {
		j, err := journal.Open(journalPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		rec = j.NewRun()
		coordOpts = append(coordOpts, sim.WithRecorder(rec))
		logger.Info("journal ready", "path", journalPath, "run_id", rec.RunID())
	}

	// JSON output keeps stdout machine-readable, so the board is dropped.
	showBoard := !opts.NoDisplay && opts.Format != "json"
	var board *display.Board
	var s *sim.Simulation
	if showBoard {
		boardOpts := []display.BoardOption{}
		if opts.ANSI {
			boardOpts = append(boardOpts, display.WithANSI())
		}
		board = display.NewBoard(cmd.OutOrStdout(), rt.DisplayInterval, boardOpts...)
		coordOpts = append(coordOpts, sim.WithObserver(func() {
			board.Refresh(s.Snapshot())
		}))
	}

	s = sim.New(registry, units, queue, coordOpts...)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, ending voyage", "signal", sig)
			s.Stop("signal received")
		case <-ctx.Done():
		}
	}()

	logger.Info("voyage starting")
	if err := s.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "simulation error", err)
	}

	snap := s.Snapshot()
	if board != nil {
		board.Render(snap)
	}

	resources, unitModes := summarize(snap)
	summary := runSummary{
		Scenario:  scenarioName,
		Events:    s.Coordinator().EventsDrained(),
		Resources: resources,
		Units:     unitModes,
	}
	if rec != nil {
		summary.RunID = rec.RunID()
	}

	logger.Info("voyage ended", "events", summary.Events)
	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(summary)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Simulation terminated and resources cleaned up.")
	return nil
}
