// Package digest computes content digests over app source trees and reads
// and writes the Manifest side-car that records a signed digest triple.
//
// A digest triple is three independent hashes over one archive blob:
//   - SHA-256 (64 hex chars)
//   - SHA-512 (128 hex chars)
//   - BLAKE3 with a 64-byte output (128 hex chars)
//
// The blob is a zip archive of every eligible file in the tree, added in
// sorted slash-path order with a fixed modification time, so an unchanged
// tree always yields the same bytes. Excluded directories (cache dirs such as
// __pycache__) and the root Manifest file never contribute.
//
// The archive is written to a temporary file that is removed on every exit
// path.
package digest
