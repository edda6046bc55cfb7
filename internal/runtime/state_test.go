package runtime

import "testing"

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		ok       bool
	}{
		{StateUninitialized, StateInitialized, true},
		{StateUninitialized, StateDisplaying, false},
		{StateInitialized, StateUpdating, true},
		{StateInitialized, StateDisplaying, true},
		{StateUpdating, StateDisplaying, true},
		{StateUpdating, StateInitialized, false},
		{StateDisplaying, StateUpdating, true},
		{StateDisplaying, StateInitialized, false},

		// CleanedUp is reachable from anywhere and leads nowhere
		{StateUninitialized, StateCleanedUp, true},
		{StateUpdating, StateCleanedUp, true},
		{StateDisplaying, StateCleanedUp, true},
		{StateCleanedUp, StateInitialized, false},
		{StateCleanedUp, StateUpdating, false},
		{StateCleanedUp, StateCleanedUp, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.ok {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestStateString(t *testing.T) {
	if StateCleanedUp.String() != "cleaned-up" {
		t.Fatalf("unexpected name: %s", StateCleanedUp)
	}
	if State(99).String() != "unknown" {
		t.Fatalf("out-of-range states must read as unknown")
	}
}

func TestStateTerminal(t *testing.T) {
	if StateDisplaying.IsTerminal() {
		t.Fatalf("displaying is not terminal")
	}
	if !StateCleanedUp.IsTerminal() {
		t.Fatalf("cleaned-up must be terminal")
	}
}
