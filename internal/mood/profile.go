package mood

import (
	"fmt"

	"github.com/unwindhq/unwind/internal/content"
)

// NoveltyPref selects which novelty preference curve a state uses.
type NoveltyPref string

const (
	NoveltyLow    NoveltyPref = "low"
	NoveltyMedium NoveltyPref = "medium"
	NoveltyHigh   NoveltyPref = "high"
)

// Weights is the per-state scoring weight vector. The five factor weights are
// percentages summing to 100; Novelty is an independent magnitude on top of
// that budget. Directionality of the novelty preference lives entirely in
// NoveltyPref, so Novelty is unsigned.
type Weights struct {
	Mood       float64 `json:"mood"`
	Time       float64 `json:"time"`
	Energy     float64 `json:"energy"`
	Preference float64 `json:"preference"`
	Quality    float64 `json:"quality"`
	Novelty    float64 `json:"novelty"`
}

// StateProfile holds the static tuning parameters for one State.
// Profiles are defined once at package init and never mutated.
type StateProfile struct {
	State          State              `json:"state"`
	IntensityMin   float64            `json:"intensity_min"`
	IntensityMax   float64            `json:"intensity_max"`
	NoveltyPref    NoveltyPref        `json:"novelty_pref"`
	GenreBoosts    map[string]float64 `json:"genre_boosts"`    // genre → boost tier
	GenrePenalties map[string]float64 `json:"genre_penalties"` // genre → penalty factor
	Tags           []string           `json:"tags"`            // 4-entry state tag vocabulary
	Weights        Weights            `json:"weights"`
}

var profiles = map[State]StateProfile{
	StateCalmSeeking: {
		State:        StateCalmSeeking,
		IntensityMin: 0.0, IntensityMax: 0.35,
		NoveltyPref: NoveltyLow,
		GenreBoosts: map[string]float64{
			"comedy": 2, "family": 1, "romance": 1, "animation": 1, "music": 1,
		},
		GenrePenalties: map[string]float64{
			"horror": 1, "thriller": 1, "action": 1, "war": 0.5,
		},
		Tags:    []string{"calm", "cozy", "light", "fun"},
		Weights: Weights{Mood: 35, Time: 25, Energy: 15, Preference: 15, Quality: 10, Novelty: 5},
	},
	StateHighEnergyRelease: {
		State:        StateHighEnergyRelease,
		IntensityMin: 0.6, IntensityMax: 1.0,
		NoveltyPref: NoveltyMedium,
		GenreBoosts: map[string]float64{
			"action": 2, "thriller": 1, "adventure": 1, "crime": 1, "sport": 1,
		},
		GenrePenalties: map[string]float64{
			"romance": 0.5, "family": 0.5,
		},
		Tags:    []string{"intense", "epic", "adrenaline", "fast"},
		Weights: Weights{Mood: 30, Time: 10, Energy: 30, Preference: 15, Quality: 15, Novelty: 10},
	},
	StateGrowthSeeking: {
		State:        StateGrowthSeeking,
		IntensityMin: 0.3, IntensityMax: 0.6,
		NoveltyPref: NoveltyHigh,
		GenreBoosts: map[string]float64{
			"documentary": 2, "history": 1, "drama": 1, "science fiction": 1,
		},
		GenrePenalties: map[string]float64{
			"horror": 1,
		},
		Tags:    []string{"mindful", "learning", "inspiring", "thought-provoking"},
		Weights: Weights{Mood: 25, Time: 15, Energy: 10, Preference: 20, Quality: 30, Novelty: 15},
	},
	StateLowStimulation: {
		State:        StateLowStimulation,
		IntensityMin: 0.0, IntensityMax: 0.25,
		NoveltyPref: NoveltyLow,
		GenreBoosts: map[string]float64{
			"family": 1, "animation": 1, "documentary": 1, "music": 1,
		},
		GenrePenalties: map[string]float64{
			"horror": 2, "thriller": 1, "action": 1,
		},
		Tags:    []string{"gentle", "quiet", "soothing", "slow"},
		Weights: Weights{Mood: 40, Time: 20, Energy: 20, Preference: 10, Quality: 10, Novelty: 5},
	},
	StateUndecided: {
		State:        StateUndecided,
		IntensityMin: 0.2, IntensityMax: 0.7,
		NoveltyPref: NoveltyMedium,
		GenreBoosts: map[string]float64{
			"comedy": 1, "adventure": 1, "drama": 1,
		},
		GenrePenalties: map[string]float64{},
		Tags:           []string{"fun", "popular", "classic", "cozy"},
		Weights:        Weights{Mood: 20, Time: 20, Energy: 20, Preference: 20, Quality: 20, Novelty: 8},
	},
}

// ProfileOf returns the StateProfile for state. Every defined State has an
// entry; asking for anything else is a programming error, hence the panic.
// Call Validate at startup so deployment defects surface before traffic.
func ProfileOf(state State) StateProfile {
	p, ok := profiles[state]
	if !ok {
		panic(fmt.Sprintf("mood: no profile for state %q", state))
	}
	return p
}

// Validate checks that every declared State has a profile and every profile's
// five factor weights sum to 100. Returns an error describing the first
// defect found; the caller must treat any error as fatal.
func Validate() error {
	for _, st := range States {
		p, ok := profiles[st]
		if !ok {
			return fmt.Errorf("mood: state %q has no profile", st)
		}
		sum := p.Weights.Mood + p.Weights.Time + p.Weights.Energy + p.Weights.Preference + p.Weights.Quality
		if sum < 99.5 || sum > 100.5 {
			return fmt.Errorf("mood: state %q factor weights sum to %.1f, want 100", st, sum)
		}
		if len(p.Tags) != 4 {
			return fmt.Errorf("mood: state %q has %d vocabulary tags, want 4", st, len(p.Tags))
		}
		if p.IntensityMin < 0 || p.IntensityMax > 1 || p.IntensityMin > p.IntensityMax {
			return fmt.Errorf("mood: state %q has invalid intensity range [%g, %g]", st, p.IntensityMin, p.IntensityMax)
		}
	}
	return nil
}

// focusMultipliers maps (focus, content type) to a score multiplier.
// Unlisted combinations default to 1.0.
var focusMultipliers = map[Focus]map[content.Type]float64{
	FocusWatch:  {content.TypeWatch: 1.1, content.TypeListen: 0.8},
	FocusListen: {content.TypeListen: 1.1, content.TypeWatch: 0.7},
	FocusRead:   {content.TypeRead: 1.1, content.TypeListen: 0.85},
	FocusMove:   {content.TypeMove: 1.1},
	FocusCreate: {content.TypeCreate: 1.1},
	FocusReset:  {content.TypeReset: 1.1},
}

// FocusMultiplier returns the score multiplier for serving an item of the
// given content type under the given focus. Defaults to 1.0.
func FocusMultiplier(focus Focus, typ content.Type) float64 {
	if m, ok := focusMultipliers[focus]; ok {
		if v, ok := m[typ]; ok {
			return v
		}
	}
	return 1.0
}

// FocusMultipliers returns a copy of the full multiplier table, keyed by
// focus then content type. Used by introspection endpoints only.
func FocusMultipliers() map[Focus]map[content.Type]float64 {
	out := make(map[Focus]map[content.Type]float64, len(focusMultipliers))
	for f, row := range focusMultipliers {
		cp := make(map[content.Type]float64, len(row))
		for t, v := range row {
			cp[t] = v
		}
		out[f] = cp
	}
	return out
}

// NoveltyFit maps an item novelty value in [0,1] to a fit in [0,1] under the
// given preference curve. Each curve is a three-tier step function.
func NoveltyFit(novelty float64, pref NoveltyPref) float64 {
	switch pref {
	case NoveltyLow:
		switch {
		case novelty < 0.35:
			return 1.0
		case novelty < 0.7:
			return 0.6
		default:
			return 0.25
		}
	case NoveltyHigh:
		switch {
		case novelty > 0.65:
			return 1.0
		case novelty > 0.35:
			return 0.6
		default:
			return 0.2
		}
	default: // medium
		switch {
		case novelty >= 0.35 && novelty <= 0.65:
			return 1.0
		case novelty < 0.2 || novelty > 0.8:
			return 0.3
		default:
			return 0.65
		}
	}
}
