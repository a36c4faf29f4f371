// Package store provides SQLite-backed durable storage for pulse trace
// runs.
//
// The store implements an append-only log with:
//   - Runs: one record per traced program (token, program hash, versions)
//   - Pulse Events: the ordered event log of a run
//
// # Critical Patterns
//
// CP-1: Content-Addressed Identity
//   - Event IDs are SHA-256 over canonical JSON with domain separation
//   - Duplicate writes are silently ignored (ON CONFLICT DO NOTHING)
//
// CP-2: Logical Identity and Time
//   - All ordering uses idx INTEGER (log position), NEVER timestamps
//   - Enables deterministic replay regardless of wall time
//
// CP-3: Deterministic Query Results
//   - All queries MUST include: ORDER BY idx ASC, id ASC COLLATE BINARY
//   - Ensures identical results across replays
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// All content-addressed IDs are computed via functions in internal/ir/hash.go
// using RFC 8785 canonical JSON and SHA-256 with domain separation.
package store
