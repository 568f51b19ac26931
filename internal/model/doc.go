// Package model provides the shared types of the app registry.
//
// This package contains type definitions only. Every other internal package
// imports model; model imports nothing internal.
//
// Key constraints:
//   - Apps are addressed by (app type, app name), never by row id
//   - A digest triple is all-or-nothing (see Digests.IsZero)
//   - Lookups that miss report an Outcome, not an error
//   - Host names are canonical (see HostName) before they reach the store
package model
