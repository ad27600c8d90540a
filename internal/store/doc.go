// Package store provides SQLite-backed history of verification runs.
//
// Each run records the program name and digest, the outcome, and every
// hazard found, in the order the verifier reported them:
//   - runs: one row per verification, keyed by a UUIDv7 run id
//   - run_hazards: hazard edges, keyed by (run_id, idx)
//
// Ordering uses seq INTEGER (assigned on insert), never timestamps, and every
// query orders by seq ASC then idx ASC so reads are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Program digests are computed by ir.ProgramDigest using RFC 8785 canonical
// JSON and SHA-256 with domain separation.
package store
