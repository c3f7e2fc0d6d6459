// Package overlay holds the process-wide edit overlay: pending, unconfirmed
// module edits keyed by module name.
//
// The store outlives any single editor page. Pages read their own module's
// slice, write coalesced snapshots into it and clear it on discard; they never
// touch another module's slice (Set rejects such writes).
//
// Values are treated as immutable. Get returns the same Patch reference until
// the slice actually changes, so consumers may memoize on reference identity.
// A write whose merged value equals the current one keeps the old reference
// and notifies nobody.
package overlay
