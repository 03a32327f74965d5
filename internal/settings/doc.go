// Package settings computes effective, per-workspace Python settings.
//
// Raw values flow from the store through placeholder resolution and path
// normalization into a Snapshot, one per workspace scope. Snapshots are
// cached in a Registry and recomputed in place when raw configuration or
// the preferred interpreter changes; consumers observe debounced change
// notifications.
//
// Resolution never fails. Misconfigured values fall back to defaults or
// pass through unchanged; only programmer misuse (resetting the registry
// outside a test context) panics.
package settings
