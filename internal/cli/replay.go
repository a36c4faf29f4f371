package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayResult holds the replay command output.
type ReplayResult struct {
	Token        string          `json:"token"`
	Verified     bool            `json:"verified"`
	ProgramHash  string          `json:"program_hash"`
	StoredEvents int             `json:"stored_events"`
	ReplayEvents int             `json:"replay_events"`
	Divergence   *DivergenceJSON `json:"divergence,omitempty"`
}

// DivergenceJSON describes the first mismatch between the stored and
// replayed event logs.
type DivergenceJSON struct {
	Index    int    `json:"index"`
	StoredID string `json:"stored_id,omitempty"`
	ReplayID string `json:"replay_id,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <run-token>",
		Short: "Re-trace a persisted run and verify its event log",
		Long: `Re-run the stored program through the current engine and compare the
recomputed event IDs against the persisted log, index by index.

A verified run proves the stored log is exactly what the engine
produces for the stored program. A divergence means the database was
modified or the engine's behavior changed since the run was recorded.

Exit codes:
  0 - Run verified
  1 - Replay diverged from the stored log
  2 - Command error (database missing, unknown run token, etc.)

Examples:
  pulsetrace replay 0198c5a4-... --db ./traces.db
  pulsetrace replay 0198c5a4-... --db ./traces.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database holding persisted runs")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, token string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	verify, err := st.VerifyRun(context.Background(), token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			msg := fmt.Sprintf("run not found: %s", token)
			_ = formatter.Error(ErrCodeStore, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	result := ReplayResult{
		Token:        verify.Token,
		Verified:     verify.Verified,
		ProgramHash:  verify.ProgramHash,
		StoredEvents: verify.StoredEvents,
		ReplayEvents: verify.ReplayEvents,
	}
	if verify.Divergence != nil {
		result.Divergence = &DivergenceJSON{
			Index:    verify.Divergence.Index,
			StoredID: verify.Divergence.StoredID,
			ReplayID: verify.Divergence.ReplayID,
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.Verified {
		return NewExitError(ExitFailure, fmt.Sprintf("run %s diverged from stored log", token))
	}
	return nil
}

// outputReplayText renders the verification result as human-readable text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) {
	w := formatter.Writer

	fmt.Fprintf(w, "Run     %s\n", result.Token)
	fmt.Fprintf(w, "Program %s\n", result.ProgramHash)
	fmt.Fprintf(w, "Events  %d stored, %d replayed\n", result.StoredEvents, result.ReplayEvents)
	fmt.Fprintln(w)

	if result.Verified {
		fmt.Fprintln(w, "✓ Replay verified: stored log matches the engine output")
		return
	}

	fmt.Fprintln(w, "✗ Replay diverged from the stored log")
	if d := result.Divergence; d != nil {
		fmt.Fprintf(w, "  first mismatch at index %d\n", d.Index)
		if d.StoredID != "" {
			fmt.Fprintf(w, "    stored:   %s\n", d.StoredID)
		}
		if d.ReplayID != "" {
			fmt.Fprintf(w, "    replayed: %s\n", d.ReplayID)
		}
	}
}
