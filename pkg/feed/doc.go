// Package feed implements the reference Feed Adapter: the boundary
// between an upstream message source and the Pool Supervisor. It
// enforces the maxActiveContainers concurrency cap as backpressure on
// delivery and satisfies pool.Feed so the supervisor can signal back
// when a slot frees up.
package feed
