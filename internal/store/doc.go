// Package store runs translated queries against a SQLite database.
//
// It is the executor behind the querytx CLI: a squirrel builder populated by
// the translator is rendered, executed through sqlx, and every row comes back
// as a collection.Record, ready to be sorted or windowed again by the
// collection backend. Relation hands out a gorm relation over the same
// connection for the relation backend, and Find materializes it the same way.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - A single open connection, so ":memory:" databases survive between
//     calls
package store
