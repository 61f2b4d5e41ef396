// Package store provides SQLite-backed durable storage for the league:
// teams and rosters, matches, play-by-play events, plan submissions and
// season statistics.
//
// # Transactions
//
// Every read and write goes through Atomically, which runs a callback inside
// one transaction. The DSN sets _txlock=immediate so each transaction takes
// the database write lock at BEGIN; with a single open connection this makes
// matchmaking read-check-write sequences mutually exclusive. The Lock*
// methods document which rows a caller means to claim; on SQLite the whole
// database is already held.
//
// # Ordering
//
//   - Events are read ORDER BY period, tick, seq. Seq is the engine's logical
//     clock and is UNIQUE per match, so appends are idempotent.
//   - Lists of matches and teams always carry an id tiebreak.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Plans and event payloads are stored as canonical JSON (internal/canon) so
// stored bytes are stable across writes.
package store
