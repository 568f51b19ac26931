// Package store provides SQLite-backed storage for the app registry.
//
// Four tables:
//   - app_type: categories of apps, each with a filesystem root
//   - com_app: host applications, keyed by lower-case short name
//   - app: registered apps with their digest triple
//   - app_works_with_com_app: the app × host enablement matrix
//
// # Addressing
//
// Every exported method addresses apps by (app type name, app name). Row ids
// never leave the package. Inserts derive the new row id by re-lookup rather
// than relying on the driver's last-insert-id.
//
// # Outcomes
//
// A lookup that misses returns model.OutcomeNotFound, not an error. Errors
// are reserved for I/O failures and structurally invalid input such as an
// unknown app type (a *model.ConfigError).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// There is no cross-process locking. One writer at a time is assumed.
package store
