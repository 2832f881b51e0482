package file

import "strings"

// State represents the lifecycle of a file record.
type State string

const (
	// StatePending means tags have not been read from disk yet.
	StatePending State = "pending"
	// StateNormal means the editable metadata matches the original.
	StateNormal State = "normal"
	// StateChanged means the editable metadata differs from the original.
	StateChanged State = "changed"
	// StateError means the tag read or write failed.
	StateError State = "error"
	// StateRemoved means the record has left the workspace. Removed
	// files are never matched or saved.
	StateRemoved State = "removed"
)

var allStates = []State{
	StatePending,
	StateNormal,
	StateChanged,
	StateError,
	StateRemoved,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// ParseState converts a string into a known State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}
