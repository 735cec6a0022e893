// Package store provides SQLite-backed history of scenario runs.
//
// Every executor run can be recorded as one runs row plus one
// scenario_results row per scenario, in run order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Run IDs are UUIDv7 by default so they sort by creation time.
package store
