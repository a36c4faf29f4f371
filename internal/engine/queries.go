package engine

import "github.com/roach88/pulsetrace/internal/ir"

// Intersecting returns every registered frame whose qubit set has a
// non-empty intersection with the given qubits. The frame name plays no
// part in the membership test. Results are in registration order.
func (s *StateStore) Intersecting(qubits []int) []ir.Frame {
	var out []ir.Frame
	for _, f := range s.frames {
		if f.IntersectsQubits(qubits) {
			out = append(out, f)
		}
	}
	return out
}

// Exact returns every registered frame whose qubit set equals the given
// qubits exactly (order-insensitive set equality). Results are in
// registration order.
func (s *StateStore) Exact(qubits []int) []ir.Frame {
	var out []ir.Frame
	for _, f := range s.frames {
		if f.HasExactQubits(qubits) {
			out = append(out, f)
		}
	}
	return out
}
