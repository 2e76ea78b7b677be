package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/voyager/internal/journal"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Journal string
	Run     string
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List journaled events from past runs",
		Long: `List the events recorded while voyages ran against a journal.
Events are ordered by run and by the coordinator's processing sequence.

Example:
  voyager events --journal ./voyage.db
  voyager events --journal ./voyage.db --run 0195f3a4-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite event journal (required)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "only list events for this run id")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

// eventRow is the JSON shape of one journaled event.
type eventRow struct {
	RunID     string    `json:"run_id"`
	Seq       int64     `json:"seq"`
	Unit      string    `json:"unit"`
	Resource  string    `json:"resource"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	Magnitude int       `json:"magnitude"`
	At        time.Time `json:"at"`
}

func runEvents(opts *EventsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	entries, err := j.Events(opts.Run)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read events", err)
	}
	formatter.VerboseLog("Found %d event(s)", len(entries))

	if opts.Format == "json" {
		rows := make([]eventRow, len(entries))
		for i, e := range entries {
			rows[i] = eventRow{
				RunID: e.RunID, Seq: e.Seq, Unit: e.Unit, Resource: e.Resource,
				Status: e.Status, Priority: e.Priority, Magnitude: e.Magnitude, At: e.At,
			}
		}
		return formatter.Success(rows)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSEQ\tUNIT\tRESOURCE\tSTATUS\tPRIORITY\tMAGNITUDE\tAT")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.RunID, e.Seq, e.Unit, e.Resource, e.Status, e.Priority, e.Magnitude,
			e.At.Format(time.RFC3339))
	}
	return w.Flush()
}
