// Package engine implements the deterministic pulse-timing tracer.
//
// The tracer walks a typed pulse program in instruction order and computes,
// for every emitted pulse, its start time, end time and a snapshot of the
// target frame's analog state at emission, while enforcing the hardware
// synchronization rules: per-frame delays, fences, and mutual exclusion of
// frames that share qubits.
//
// ARCHITECTURE:
//
// Strictly sequential state machine:
//  1. The Tracer initializes one FrameState per frame definition.
//  2. Instructions are applied one at a time in program order; no
//     instruction is dispatched before the previous one's mutations are
//     fully committed.
//  3. Pulse-like instructions append to the event log and advance clocks;
//     everything else only mutates clocks or frame state.
//
// "Blocking" is a logical-time concept, not a scheduling one: a blocking
// pulse reserves its frame's qubits by pushing the clock of every
// overlapping frame up to the pulse's end time. Nothing in this package
// suspends or performs I/O.
//
// CRITICAL PATTERNS:
//
// Per-frame logical clocks:
// Each frame carries its own time cursor, advanced by delays, pulses and
// synchronization. NEVER use wall-clock timestamps; all times are
// real-valued seconds on the program's logical axis.
//
// Value-copy snapshots:
// Every frame-state read for logging goes through a deep copy. A stored
// PulseEvent can never observe later mutations of the live state.
//
// Deterministic iteration:
// Frame registries iterate in registration order, never map order. The
// same program always produces the identical event log.
//
// THREAD SAFETY: a Tracer owns its clock store, state store and event log
// exclusively for the duration of a run. It is NOT safe for concurrent
// mutation from multiple goroutines; use one Tracer per goroutine.
package engine
