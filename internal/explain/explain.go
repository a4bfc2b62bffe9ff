// Package explain renders a short human-readable justification for one
// recommendation from its score breakdown.
package explain

import (
	"fmt"
	"sort"

	"github.com/unwindhq/unwind/internal/content"
	"github.com/unwindhq/unwind/internal/mood"
	"github.com/unwindhq/unwind/internal/scoring"
)

// secondFactorThreshold is the minimum weighted contribution before a second
// factor earns its own "+ …" clause.
const secondFactorThreshold = 10.0

type factor struct {
	name         string
	contribution float64
}

// Why produces the explanation phrase for item given its breakdown and the
// request context. The result is always non-empty.
func Why(item content.Item, b scoring.Breakdown, state mood.State, availableMin int) string {
	profile := mood.ProfileOf(state)
	w := profile.Weights

	factors := []factor{
		{"mood", b.Mood * w.Mood / 100},
		{"time", b.Time * w.Time / 100},
		{"energy", b.Energy * w.Energy / 100},
		{"preference", b.Preference * w.Preference / 100},
		{"quality", b.Quality * w.Quality / 100},
		{"novelty", b.Novelty * w.Novelty / 100},
	}
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].contribution > factors[j].contribution
	})

	top, second := factors[0], factors[1]

	phrase := opening(state, item)
	clause := factorClause(top.name, item, profile, availableMin)
	if clause == "" {
		return fmt.Sprintf("Good fit for %s.", state)
	}
	phrase += " — " + clause

	if second.contribution > secondFactorThreshold && second.name != top.name {
		if c := factorClause(second.name, item, profile, availableMin); c != "" {
			phrase += " + " + c
		}
	}

	if extra := intensityDescriptor(state, item.Intensity); extra != "" {
		phrase += ", " + extra
	}

	return phrase + "."
}

// opening picks the state-specific descriptor via simple thresholds on the
// item's intensity and novelty.
func opening(state mood.State, item content.Item) string {
	switch state {
	case mood.StateCalmSeeking:
		if item.Intensity < 0.35 {
			return "Gentle"
		}
		return "Calming"
	case mood.StateHighEnergyRelease:
		if item.Intensity > 0.65 {
			return "High-octane"
		}
		return "Energizing"
	case mood.StateGrowthSeeking:
		if item.Novelty > 0.6 {
			return "Fresh"
		}
		return "Enriching"
	case mood.StateLowStimulation:
		if item.Intensity < 0.25 {
			return "Quiet"
		}
		return "Soft"
	default:
		return "Balanced"
	}
}

func factorClause(name string, item content.Item, profile mood.StateProfile, availableMin int) string {
	switch name {
	case "time":
		if item.DurationMin > 0 && availableMin > 0 {
			return fmt.Sprintf("fits your %d-min window", availableMin)
		}
		return "no time pressure"
	case "energy":
		return "matches your energy"
	case "quality":
		if item.Rating != nil && *item.Rating > 0.7 {
			return "high-rated"
		}
		return "well-reviewed"
	case "mood":
		return "suits how you're feeling"
	case "preference":
		return "matches your tastes"
	case "novelty":
		if profile.NoveltyPref == mood.NoveltyHigh {
			return "something new"
		}
		return "a familiar pick"
	}
	return ""
}

// intensityDescriptor adds a trailing note only at the extremes.
func intensityDescriptor(state mood.State, intensity float64) string {
	switch {
	case intensity < 0.15 && (state == mood.StateCalmSeeking || state == mood.StateLowStimulation):
		return "very gentle"
	case intensity > 0.85 && state == mood.StateHighEnergyRelease:
		return "full throttle"
	}
	return ""
}
