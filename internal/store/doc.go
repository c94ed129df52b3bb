// Package store provides the SQLite dispatch journal.
//
// The journal is an append-only audit trail of dispatch attempts. The
// engine only writes to it; nothing read back from it influences rule
// evaluation, so state never survives a restart.
//
// # Ordering
//
// Rows are ordered by seq, an AUTOINCREMENT key assigned by the journal at
// insert time. Ticks wrap and restart with the process, so they cannot order
// rows on their own.
//
// # Database Configuration
//
//   - WAL mode: history can be read while the daemon writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: tolerate a concurrent reader holding a lock
package store
