// Package store provides SQLite-backed history of scenario runs.
//
// Each run records the scenario name, whether it passed, a digest of its
// canonical snapshot and one row per expectation with the actual timeline
// that was recorded.
//
// # Ordering
//
// Runs are ordered by a logical seq column assigned at write time, never by
// wall-clock timestamps. Every list query uses ORDER BY seq ASC, id ASC
// COLLATE BINARY so results are identical across machines.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Digests are computed by internal/ir from canonical JSON with SHA-256 and
// domain separation.
package store
