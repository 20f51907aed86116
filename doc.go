// Package contentcache implements a bounded [Cache] of named content blobs
// that combines time-to-live expiry with insertion and access recency.
//
// The following is a summary of the model (intended for maintainers).
//
// Glossary and invariants:
//
//   - Entry
//
//     One cached item: key, content, insertion (or refresh) time,
//     time-to-live, and whether it has been fetched.
//
//   - Pending list
//
//     Entries stored but never retrieved.
//     Ordered by most recent store (or re-store) at the head.
//
//   - Retrieved list
//
//     Entries fetched at least once.
//     Ordered by most recent access at the head (classic LRU order).
//
//   - Stale
//
//     An entry whose elapsed age exceeds its TTL,
//     or whose TTL is 0. A zero TTL marks content that
//     should not be retained and is always an eviction candidate.
//
//   - Capacity
//
//     Maximum combined count of pending and retrieved entries.
//     pending + retrieved ≤ capacity after every call.
//
//   - Each key lives in exactly one list.
//
//     An entry is in the retrieved list iff its Fetched flag is set.
//
// Operations:
//
//   - Put
//
//     Stores new content at the head of the pending list.
//     Storing an existing key replaces its content, restarts its clock,
//     and moves it to the head of the pending list
//     (demoting it if it had been retrieved).
//     Only a new key can trigger eviction.
//
//   - Get
//
//     Moves a hit to the head of the retrieved list.
//     The first hit on an entry is its only pending → retrieved transition.
//     A hit on a stale entry renews it: its clock restarts at the access time.
//
//   - Eviction
//
//     Victims are chosen by three tiers, first match wins:
//
//     1. The stale entry with the greatest elapsed age.
//     Ties go to the first found scanning pending, then retrieved, head to tail.
//
//     2. The tail of the pending list.
//
//     3. The tail of the retrieved list.
//
// Time is supplied by the caller on every operation;
// the cache never reads a clock and never runs in the background.
// Staleness is only evaluated when a victim is needed
// or when an entry is retrieved.
package contentcache
