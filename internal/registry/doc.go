// Package registry reconciles apps on disk with the store and exposes the
// enable/disable/list/describe operations over them.
//
// All operations are synchronous and run on the caller's goroutine. A
// Registry is not safe for concurrent use; callers that expose it remotely
// must serialize access.
//
// # Per-app state
//
// Nothing below is cached across calls:
//   - Availability: the directory exists under its type root and its
//     descriptor loads
//   - Registration: a store row exists
//   - Integrity: unchanged, updated or corrupted (see AppState)
//   - Enablement: one flag per declared host
//
// # Integrity
//
// An app with a Manifest is in user mode. Its generated digests must match
// the Manifest or it is corrupted. An app without one is in dev mode and is
// never corrupted. In both modes a mismatch against the store means updated.
//
// # Reconciliation
//
// UpdateInventory is the one place disk and store are brought into
// agreement. Running it twice with no change on disk fires no events.
package registry
