// Package ir provides the typed intermediate representation for pulse-level
// control programs.
//
// This package contains type definitions and canonical serialization only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Frame identity is the canonical FrameKey: sorted deduplicated qubits
//     plus NFC-normalized name. Never compare Frame structs directly.
//   - FrameState is a plain value type; reads are value copies, never
//     aliases of live state.
//   - Instruction is a sealed union with one variant per supported kind.
//     The engine's dispatcher matches it exhaustively; anything outside
//     the union is a fatal error by construction.
//   - All times and durations are float64 seconds on a logical time axis,
//     never wall-clock timestamps.
//   - Content-addressed identity (event IDs, program hashes) is computed
//     over canonical JSON only (MarshalCanonical).
//   - All JSON tags use snake_case.
package ir
