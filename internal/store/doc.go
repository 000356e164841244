// Package store archives loaded solution logs in SQLite so runs can be
// listed, re-projected and served without re-reading the source files.
//
// A run is written in one transaction. Writing an existing run ID replaces
// the run wholesale; nothing of the previous version survives.
//
// # Ordering
//
//   - Solutions are read back ORDER BY seq, the arrival position in the log.
//   - Runs are listed ORDER BY seq, the order they were written in.
//
// Every solution row carries a digest of its worker and permutation computed
// with internal/canon, so duplicate visits can be counted in SQL.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Cascading deletes from runs to solutions
package store
