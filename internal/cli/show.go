package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsetrace/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
}

// ShowResult holds the show command output.
type ShowResult struct {
	Token         string           `json:"token"`
	ProgramHash   string           `json:"program_hash"`
	EngineVersion string           `json:"engine_version"`
	IRVersion     string           `json:"ir_version"`
	EventCount    int              `json:"event_count"`
	Events        []TraceEventJSON `json:"events"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [run-token]",
		Short: "Show a persisted run and its event log",
		Long: `Read a persisted run from the database and print its event log.
Without a run token, lists all run tokens in the database.

Exit codes:
  0 - Run found (or list printed)
  2 - Command error (database missing, unknown run token, etc.)

Examples:
  pulsetrace show --db ./traces.db
  pulsetrace show 0198c5a4-... --db ./traces.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runList(opts, cmd)
			}
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database holding persisted runs")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runList(opts *ShowOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	tokens, err := st.ListRunTokens(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]interface{}{"tokens": tokens})
	}
	if len(tokens) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs in database.")
		return nil
	}
	for _, token := range tokens {
		fmt.Fprintln(formatter.Writer, token)
	}
	return nil
}

func runShow(opts *ShowOptions, token string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	run, err := st.ReadRun(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			msg := fmt.Sprintf("run not found: %s", token)
			_ = formatter.Error(ErrCodeStore, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	records, err := st.ReadEvents(ctx, token)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := ShowResult{
		Token:         run.Token,
		ProgramHash:   run.ProgramHash,
		EngineVersion: run.EngineVersion,
		IRVersion:     run.IRVersion,
		EventCount:    run.EventCount,
		Events:        make([]TraceEventJSON, len(records)),
	}
	for i, rec := range records {
		result.Events[i] = TraceEventJSON{
			Index:     rec.Index,
			Kind:      rec.Event.Instruction.Kind(),
			Frame:     rec.Event.Frame().String(),
			StartTime: rec.Event.StartTime,
			EndTime:   rec.Event.EndTime,
			Phase:     rec.Event.State.Phase,
			Scale:     rec.Event.State.Scale,
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run     %s\n", result.Token)
	fmt.Fprintf(w, "Program %s\n", result.ProgramHash)
	fmt.Fprintf(w, "Engine  %s (IR v%s)\n", result.EngineVersion, result.IRVersion)
	fmt.Fprintln(w)
	if len(result.Events) == 0 {
		fmt.Fprintln(w, "No pulse events recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-5s %-12s %-14s %14s %14s\n", "IDX", "KIND", "FRAME", "START", "END")
	for _, ev := range result.Events {
		fmt.Fprintf(w, "%-5d %-12s %-14s %14g %14g\n",
			ev.Index, ev.Kind, ev.Frame, ev.StartTime, ev.EndTime)
	}
	return nil
}

// newFormatter builds an OutputFormatter wired to the command's streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openStore opens the run database, mapping failures to command errors.
func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
