package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Frame identifies a control channel: a named analog line attached to one
// or more qubit indices. Two frames are the same channel iff their qubit
// sets and names match; qubit order and duplicates are irrelevant.
type Frame struct {
	Qubits []int  `json:"qubits"`
	Name   string `json:"name"`
}

// FrameKey is the canonical, comparable identity of a Frame. It is safe to
// use as a map key: the qubit set is sorted and deduplicated, and the name
// is NFC-normalized so identity does not depend on the Unicode
// representation of user-supplied text.
type FrameKey struct {
	qubits string // canonical "0,1,5" encoding
	name   string
}

// Key returns the canonical identity of the frame.
func (f Frame) Key() FrameKey {
	return FrameKey{
		qubits: encodeQubits(canonicalQubits(f.Qubits)),
		name:   norm.NFC.String(f.Name),
	}
}

// CanonicalQubits returns the frame's qubit set sorted and deduplicated.
// The receiver is never mutated.
func (f Frame) CanonicalQubits() []int {
	return canonicalQubits(f.Qubits)
}

// Equal reports whether two frames denote the same channel.
func (f Frame) Equal(other Frame) bool {
	return f.Key() == other.Key()
}

// IntersectsQubits reports whether the frame touches any qubit in the
// given set. The frame name is ignored.
func (f Frame) IntersectsQubits(qubits []int) bool {
	set := make(map[int]struct{}, len(qubits))
	for _, q := range qubits {
		set[q] = struct{}{}
	}
	for _, q := range f.Qubits {
		if _, ok := set[q]; ok {
			return true
		}
	}
	return false
}

// HasExactQubits reports whether the frame's qubit set equals the given
// set exactly (order-insensitive, duplicates ignored).
func (f Frame) HasExactQubits(qubits []int) bool {
	return encodeQubits(canonicalQubits(f.Qubits)) == encodeQubits(canonicalQubits(qubits))
}

// String renders the frame for logs and error messages, e.g. `rf[0,1]`.
func (f Frame) String() string {
	return fmt.Sprintf("%s[%s]", f.Name, encodeQubits(canonicalQubits(f.Qubits)))
}

// String renders the canonical key, e.g. `rf[0,1]`.
func (k FrameKey) String() string {
	return fmt.Sprintf("%s[%s]", k.name, k.qubits)
}

// canonicalQubits sorts and deduplicates a qubit list without mutating the
// input slice.
func canonicalQubits(qubits []int) []int {
	out := make([]int, len(qubits))
	copy(out, qubits)
	sort.Ints(out)
	n := 0
	for i, q := range out {
		if i > 0 && q == out[n-1] {
			continue
		}
		out[n] = q
		n++
	}
	return out[:n]
}

// encodeQubits renders an already-canonical qubit list as "0,1,5".
func encodeQubits(qubits []int) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = strconv.Itoa(q)
	}
	return strings.Join(parts, ",")
}
