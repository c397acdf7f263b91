// Package policy implements the pure scheduling decisions the pool
// supervisor delegates to: picking a warm container to reuse, picking a
// matching prewarm container to promote, and picking a victim to evict
// when the pool is full of idle warm containers. None of these
// functions touch I/O, channels, or mutable shared state — each takes
// a snapshot of a worker map and returns a decision.
package policy

import "github.com/cuemby/invoker/pkg/types"

// SelectWarm returns a worker in free whose WarmedData matches action
// (by name+revision) and namespace. Tie-breaking among multiple matches
// is arbitrary — Go's map iteration order.
func SelectWarm(free map[types.WorkerID]types.ContainerData, action types.Action, namespace string) (types.WorkerID, bool) {
	for id, data := range free {
		if data.MatchesWarm(action, namespace) {
			return id, true
		}
	}
	return "", false
}

// SelectPrewarm returns a worker in prewarmed whose (kind, memory)
// matches the action's exec params. Tie-breaking is arbitrary.
func SelectPrewarm(prewarmed map[types.WorkerID]types.ContainerData, exec types.ExecParams) (types.WorkerID, bool) {
	for id, data := range prewarmed {
		if data.MatchesPrewarm(exec) {
			return id, true
		}
	}
	return "", false
}

// SelectVictim returns the worker in free with the minimum LastUsed
// among those in Warmed state. PreWarmed and NoData workers in free are
// never eviction candidates: evicting a prewarm container would defeat
// its purpose, and a NoData worker holds nothing worth reclaiming.
// Returns false if free contains no Warmed worker.
func SelectVictim(free map[types.WorkerID]types.ContainerData) (types.WorkerID, bool) {
	var victim types.WorkerID
	found := false

	for id, data := range free {
		if data.Kind != types.Warmed {
			continue
		}
		if !found || data.LastUsed.Before(free[victim].LastUsed) {
			victim = id
			found = true
		}
	}

	return victim, found
}
