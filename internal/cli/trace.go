package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsetrace/internal/compiler"
	"github.com/roach88/pulsetrace/internal/engine"
	"github.com/roach88/pulsetrace/internal/ir"
	"github.com/roach88/pulsetrace/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database        string
	Token           string
	MaxInstructions int
}

// TraceEventJSON is the JSON shape of one traced event.
type TraceEventJSON struct {
	Index     int     `json:"index"`
	Kind      string  `json:"kind"`
	Frame     string  `json:"frame"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Phase     float64 `json:"phase"`
	Scale     float64 `json:"scale"`
}

// TraceResult holds the trace command output.
type TraceResult struct {
	Token       string             `json:"token,omitempty"`
	ProgramHash string             `json:"program_hash"`
	EventCount  int                `json:"event_count"`
	Events      []TraceEventJSON   `json:"events"`
	Clocks      map[string]float64 `json:"clocks"`
	Persisted   bool               `json:"persisted"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <program.cue>",
		Short: "Trace a pulse program and print its event log",
		Long: `Compile a CUE pulse program, run it through the timing engine and
print the resulting event log and final frame clocks.

With --db the run is also persisted for later inspection and replay
verification (see "show" and "replay").

Exit codes:
  0 - Trace completed
  1 - Program failed validation or tracing
  2 - Command error (file not found, database error, etc.)

Examples:
  pulsetrace trace ramsey.cue
  pulsetrace trace ramsey.cue --db ./traces.db
  pulsetrace trace ramsey.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the run to this SQLite database")
	cmd.Flags().StringVar(&opts.Token, "token", "", "run token (default: generated UUIDv7)")
	cmd.Flags().IntVar(&opts.MaxInstructions, "max-instructions", engine.DefaultMaxInstructions,
		"instruction budget for the run")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	program, err := LoadProgramFile(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	if errs := compiler.ValidateProgram(*program); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	formatter.VerboseLog("Compiled %d frame(s), %d instruction(s)",
		len(program.Frames), len(program.Instructions))

	// Engine debug logs share stderr with verbose output; discard them
	// otherwise so they never mix with command output.
	logDest := io.Discard
	if opts.Verbose {
		logDest = cmd.ErrOrStderr()
	}
	logger := slog.New(slog.NewTextHandler(logDest, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tracer := engine.NewTracer(
		engine.WithMaxInstructions(opts.MaxInstructions),
		engine.WithLogger(logger),
	)
	events, err := tracer.Run(*program)
	if err != nil {
		var te *engine.TraceError
		if errors.As(err, &te) {
			_ = formatter.Error(string(te.Code), te.Message, te.Details)
			return NewExitError(ExitFailure, te.Error())
		}
		return WrapExitError(ExitCommandError, "trace failed", err)
	}

	programHash, err := ir.ProgramHash(*program)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash program", err)
	}

	result := TraceResult{
		ProgramHash: programHash,
		EventCount:  len(events),
		Events:      make([]TraceEventJSON, len(events)),
		Clocks:      make(map[string]float64, len(program.Frames)),
	}
	for i, ev := range events {
		result.Events[i] = TraceEventJSON{
			Index:     i,
			Kind:      ev.Instruction.Kind(),
			Frame:     ev.Frame().String(),
			StartTime: ev.StartTime,
			EndTime:   ev.EndTime,
			Phase:     ev.State.Phase,
			Scale:     ev.State.Scale,
		}
	}
	for _, def := range program.Frames {
		result.Clocks[def.Frame.String()] = tracer.ClockFor(def.Frame)
	}

	if opts.Database != "" {
		token := opts.Token
		if token == "" {
			token = store.UUIDv7Generator{}.Generate()
		}
		if err := persistTrace(opts.Database, token, *program, events); err != nil {
			return err
		}
		result.Token = token
		result.Persisted = true
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputTraceText(formatter, result)
}

// persistTrace writes a completed run to the database.
func persistTrace(dbPath, token string, program ir.Program, events []ir.PulseEvent) error {
	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.WriteTrace(context.Background(), token, program, events); err != nil {
		return WrapExitError(ExitCommandError, "failed to persist run", err)
	}
	return nil
}

// outputTraceText renders the trace result as a human-readable table.
func outputTraceText(formatter *OutputFormatter, result TraceResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Program %s\n", result.ProgramHash[:12])
	if result.Persisted {
		fmt.Fprintf(w, "Run %s persisted\n", result.Token)
	}
	fmt.Fprintln(w)

	if result.EventCount == 0 {
		fmt.Fprintln(w, "No pulse events emitted.")
	} else {
		fmt.Fprintf(w, "%-5s %-12s %-14s %14s %14s\n", "IDX", "KIND", "FRAME", "START", "END")
		for _, ev := range result.Events {
			fmt.Fprintf(w, "%-5d %-12s %-14s %14g %14g\n",
				ev.Index, ev.Kind, ev.Frame, ev.StartTime, ev.EndTime)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Final clocks:")
	frames := make([]string, 0, len(result.Clocks))
	for frame := range result.Clocks {
		frames = append(frames, frame)
	}
	sort.Strings(frames)
	for _, frame := range frames {
		fmt.Fprintf(w, "  %-14s %14g\n", frame, result.Clocks[frame])
	}

	return nil
}

// outputLoadError reports a load failure and maps it to an exit code.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		if loadErr.Code == ErrCodeCompile {
			return NewExitError(ExitFailure, loadErr.Error())
		}
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return NewExitError(ExitCommandError, err.Error())
}
