// Package selector provides memoized derivations over immutable state snapshots.
//
// A selector is a pure function from a state snapshot to a derived value. The caches in
// this package wrap selectors so that:
//
//   - calling with the same snapshot (compared with ==) returns the cached result
//     without running the derivation again;
//   - when a new snapshot produces a result equal to a stored one under the cache's
//     equality function, the stored result is returned instead of the new one, so
//     consumers relying on identity see a stable value;
//   - the number of stored results stays within a configured bound, evicting the
//     least recently used entry first.
//
// Caches never hold a lock while a derivation runs, and their counters are atomics, so
// a monitor can read Metrics concurrently with ordinary calls.
package selector
