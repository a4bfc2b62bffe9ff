// Package mood defines the user-state and focus vocabulary and the static
// per-state tuning profiles the scorer reads.
package mood

import "fmt"

// State is the coarse emotional/energy category driving scoring weights.
type State string

const (
	StateCalmSeeking       State = "calm-seeking"
	StateHighEnergyRelease State = "high-energy-release"
	StateGrowthSeeking     State = "growth-seeking"
	StateLowStimulation    State = "low-stimulation"
	StateUndecided         State = "undecided"
)

// States lists every defined state. Profile validation iterates this.
var States = []State{
	StateCalmSeeking,
	StateHighEnergyRelease,
	StateGrowthSeeking,
	StateLowStimulation,
	StateUndecided,
}

// ParseState maps a wire string to a State.
func ParseState(s string) (State, error) {
	for _, st := range States {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown state %q", s)
}

// Focus is the activity category the user asked for. Orthogonal to State.
type Focus string

const (
	FocusListen Focus = "listen"
	FocusWatch  Focus = "watch"
	FocusRead   Focus = "read"
	FocusMove   Focus = "move"
	FocusCreate Focus = "create"
	FocusReset  Focus = "reset"
)

var Focuses = []Focus{FocusListen, FocusWatch, FocusRead, FocusMove, FocusCreate, FocusReset}

// ParseFocus maps a wire string to a Focus.
func ParseFocus(s string) (Focus, error) {
	for _, f := range Focuses {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown focus %q", s)
}
