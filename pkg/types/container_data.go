package types

import "time"

// NoContainerData returns the NoData variant: a reserved slot with no
// container yet.
func NoContainerData() ContainerData {
	return ContainerData{Kind: NoData}
}

// PreWarmedData returns the PreWarmed variant for the given exec params.
func PreWarmedData(exec ExecParams) ContainerData {
	return ContainerData{Kind: PreWarmed, Exec: exec}
}

// WarmedData returns the Warmed variant, recording the action and
// namespace this container is now eligible to reuse and the instant it
// last finished a job.
func WarmedData(action Action, namespace string, lastUsed time.Time) ContainerData {
	return ContainerData{
		Kind:      Warmed,
		Exec:      action.Params(),
		Namespace: namespace,
		Action:    action,
		LastUsed:  lastUsed,
	}
}

// RemovedData returns the terminal Removed variant.
func RemovedData() ContainerData {
	return ContainerData{Kind: Removed}
}

// MatchesWarm reports whether this container, if Warmed, is eligible
// for reuse by the given action and tenant namespace.
func (c ContainerData) MatchesWarm(action Action, namespace string) bool {
	return c.Kind == Warmed && c.Namespace == namespace && c.Action.Equal(action)
}

// MatchesPrewarm reports whether this container, if PreWarmed, matches
// the given exec params.
func (c ContainerData) MatchesPrewarm(exec ExecParams) bool {
	return c.Kind == PreWarmed && c.Exec == exec
}
