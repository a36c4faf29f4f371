package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/pulsetrace/internal/ir"
)

// Run is the stored record of one traced program.
type Run struct {
	Token         string
	ProgramHash   string
	Program       ir.Program
	EngineVersion string
	IRVersion     string
	EventCount    int
}

// EventRecord is one stored pulse event with its content-addressed ID and
// log position.
type EventRecord struct {
	ID       string
	RunToken string
	Index    int
	Event    ir.PulseEvent
}

// WriteTrace persists a completed trace run and its full event log in a
// single transaction.
//
// Uses ON CONFLICT DO NOTHING for idempotency: writing the same run token
// twice is a silent no-op, and the content-addressed event IDs make
// duplicate event rows impossible. Other constraint violations still
// return errors.
//
// The program and every event are serialized to canonical JSON per
// RFC 8785 so that a stored run replays byte-identically.
func (s *Store) WriteTrace(ctx context.Context, token string, program ir.Program, events []ir.PulseEvent) (Run, error) {
	programHash, err := ir.ProgramHash(program)
	if err != nil {
		return Run{}, fmt.Errorf("write trace: %w", err)
	}

	programJSON, err := marshalProgram(program)
	if err != nil {
		return Run{}, fmt.Errorf("write trace: %w", err)
	}

	run := Run{
		Token:         token,
		ProgramHash:   programHash,
		Program:       program,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
		EventCount:    len(events),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write trace: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(token, program_hash, program, engine_version, ir_version, event_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		run.Token,
		run.ProgramHash,
		programJSON,
		run.EngineVersion,
		run.IRVersion,
		run.EventCount,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write trace: insert run: %w", err)
	}

	for i, ev := range events {
		if err := writeEvent(ctx, tx, token, i, ev); err != nil {
			return Run{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write trace: commit: %w", err)
	}

	return run, nil
}

// writeEvent inserts one pulse event row inside the run transaction.
func writeEvent(ctx context.Context, tx *sql.Tx, token string, index int, ev ir.PulseEvent) error {
	id, err := ir.EventID(token, index, ev)
	if err != nil {
		return fmt.Errorf("write event %d: %w", index, err)
	}

	instructionJSON, err := marshalInstruction(ev.Instruction)
	if err != nil {
		return fmt.Errorf("write event %d: %w", index, err)
	}

	stateJSON, err := marshalState(ev.State)
	if err != nil {
		return fmt.Errorf("write event %d: %w", index, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pulse_events
		(id, run_token, idx, kind, frame, instruction, start_time, end_time, frame_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		id,
		token,
		index,
		ev.Instruction.Kind(),
		ev.Frame().String(),
		instructionJSON,
		ev.StartTime,
		ev.EndTime,
		stateJSON,
	)
	if err != nil {
		return fmt.Errorf("write event %d: %w", index, err)
	}

	return nil
}
