package store

import (
	"context"
	"fmt"
)

// ReadRun retrieves a single run record by token.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, token string) (Run, error) {
	var run Run
	var programJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT token, program_hash, program, engine_version, ir_version, event_count
		FROM runs
		WHERE token = ?
	`, token).Scan(
		&run.Token, &run.ProgramHash, &programJSON,
		&run.EngineVersion, &run.IRVersion, &run.EventCount,
	)
	if err != nil {
		return Run{}, err
	}

	program, err := unmarshalProgram(programJSON)
	if err != nil {
		return Run{}, err
	}
	run.Program = program

	return run, nil
}

// ReadEvents returns the full event log of a run in log order.
// Results are ordered deterministically: ORDER BY idx ASC, id ASC COLLATE
// BINARY.
//
// Returns an empty slice (not nil) if the run has no events.
func (s *Store) ReadEvents(ctx context.Context, token string) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_token, idx, instruction, start_time, end_time, frame_state
		FROM pulse_events
		WHERE run_token = ?
		ORDER BY idx ASC, id COLLATE BINARY ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var rec EventRecord
		var instructionJSON, stateJSON string

		if err := rows.Scan(
			&rec.ID, &rec.RunToken, &rec.Index,
			&instructionJSON, &rec.Event.StartTime, &rec.Event.EndTime, &stateJSON,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		in, err := unmarshalInstruction(instructionJSON)
		if err != nil {
			return nil, err
		}
		rec.Event.Instruction = in

		state, err := unmarshalState(stateJSON)
		if err != nil {
			return nil, err
		}
		rec.Event.State = state

		events = append(events, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	// Return empty slice instead of nil
	if events == nil {
		events = []EventRecord{}
	}

	return events, nil
}

// ListRunTokens returns all run tokens in the database.
// Results ordered alphabetically; UUIDv7 tokens therefore sort by creation
// time.
func (s *Store) ListRunTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token FROM runs
		ORDER BY token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list run tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan run token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run tokens: %w", err)
	}

	if tokens == nil {
		tokens = []string{}
	}

	return tokens, nil
}

// CountEvents returns the number of stored events for a run.
func (s *Store) CountEvents(ctx context.Context, token string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pulse_events WHERE run_token = ?
	`, token).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}
