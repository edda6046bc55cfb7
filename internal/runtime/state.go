package runtime

// State represents the lifecycle state of a plugin instance.
type State int

const (
	StateUninitialized State = iota // constructed, not yet handed to the host
	StateInitialized                // added to the rotation
	StateUpdating                   // inside Update
	StateDisplaying                 // inside Display / holding its slot
	StateCleanedUp                  // Cleanup ran; terminal, never re-entered
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateUpdating:
		return "updating"
	case StateDisplaying:
		return "displaying"
	case StateCleanedUp:
		return "cleaned-up"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for the one state that cannot transition
// further. CleanedUp is reachable from any non-terminal state.
func (s State) IsTerminal() bool {
	return s == StateCleanedUp
}

// CanTransition reports whether the lifecycle permits moving from s
// to next.
func (s State) CanTransition(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateCleanedUp {
		return true
	}
	switch s {
	case StateUninitialized:
		return next == StateInitialized
	case StateInitialized:
		return next == StateUpdating || next == StateDisplaying
	case StateUpdating:
		return next == StateDisplaying
	case StateDisplaying:
		return next == StateUpdating
	}
	return false
}
