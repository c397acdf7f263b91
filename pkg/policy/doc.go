/*
Package policy implements the scheduling policy described by the pool
design: warm-container reuse is preferred over prewarm, prewarm is
preferred over a cold start, and eviction is LRU over only the warm
subset of free containers (never prewarm, never NoData).

These are pure functions over a snapshot of a worker map; the pool
supervisor (pkg/pool) is the only caller and is responsible for
re-running them against fresh state after every mutation.
*/
package policy
