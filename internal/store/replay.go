package store

import (
	"context"
	"fmt"

	"github.com/roach88/pulsetrace/internal/engine"
	"github.com/roach88/pulsetrace/internal/ir"
)

// VerifyResult reports the outcome of replaying a stored run.
type VerifyResult struct {
	Token        string
	Verified     bool
	ProgramHash  string
	StoredEvents int
	ReplayEvents int
	Divergence   *Divergence
}

// Divergence pinpoints the first log position where the replayed trace
// differs from the stored one.
type Divergence struct {
	Index    int
	StoredID string
	ReplayID string
}

// VerifyRun replays a stored run from its program and checks that the
// regenerated event log is identical to the stored one.
//
// Identity is checked through the content-addressed event IDs: the same
// run token, position and event payload always produce the same ID, so a
// deterministic engine makes this comparison exact. Any divergence means
// the engine's semantics changed since the run was recorded (or the
// database was tampered with).
func (s *Store) VerifyRun(ctx context.Context, token string) (VerifyResult, error) {
	run, err := s.ReadRun(ctx, token)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("verify run: %w", err)
	}

	stored, err := s.ReadEvents(ctx, token)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("verify run: %w", err)
	}

	replayed, err := engine.Trace(run.Program)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("verify run: replay trace: %w", err)
	}

	res := VerifyResult{
		Token:        token,
		ProgramHash:  run.ProgramHash,
		StoredEvents: len(stored),
		ReplayEvents: len(replayed),
	}

	if len(stored) != len(replayed) {
		res.Divergence = &Divergence{Index: min(len(stored), len(replayed))}
		if len(stored) > len(replayed) {
			res.Divergence.StoredID = stored[res.Divergence.Index].ID
		} else {
			id, err := ir.EventID(token, res.Divergence.Index, replayed[res.Divergence.Index])
			if err != nil {
				return VerifyResult{}, fmt.Errorf("verify run: %w", err)
			}
			res.Divergence.ReplayID = id
		}
		return res, nil
	}

	for i, ev := range replayed {
		id, err := ir.EventID(token, i, ev)
		if err != nil {
			return VerifyResult{}, fmt.Errorf("verify run: %w", err)
		}
		if id != stored[i].ID {
			res.Divergence = &Divergence{
				Index:    i,
				StoredID: stored[i].ID,
				ReplayID: id,
			}
			return res, nil
		}
	}

	res.Verified = true
	return res, nil
}
