// Package pool implements the Pool Supervisor: the single-writer actor
// that owns the container pool's free/busy/prewarmed bookkeeping and
// every live Container Proxy. It accepts Runs from a Feed Adapter via
// Submit, schedules them against warm, prewarm, or cold containers, and
// reacts to proxy events to keep its bookkeeping in sync with reality.
package pool
