// Package scoring computes the 0–100 compatibility score between one content
// item and one request context. A single internal computation produces the
// full factor breakdown; the scalar score is just its Total, so score and
// explanation can never drift apart.
package scoring

import (
	"math"
	"strings"

	"github.com/unwindhq/unwind/internal/content"
	"github.com/unwindhq/unwind/internal/mood"
)

// Context carries one recommendation request's inputs. Constructed fresh per
// request and never mutated by scoring.
type Context struct {
	State        mood.State
	Focus        mood.Focus
	AvailableMin int
	EnergyLevel  int // 1–5
	NoHeavy      bool
	Prefs        content.Preferences
}

// Breakdown decomposes a final score into its factor sub-scores, each
// independently clamped to [0,100]. It exists to feed explanations and is
// never persisted.
type Breakdown struct {
	Mood            float64 `json:"mood"`
	Time            float64 `json:"time"`
	Energy          float64 `json:"energy"`
	Preference      float64 `json:"preference"`
	Quality         float64 `json:"quality"`
	Novelty         float64 `json:"novelty"`
	FocusMultiplier float64 `json:"focus_multiplier"`
	Total           float64 `json:"total"`
}

// Score returns the final 0–100 score for item under ctx.
func Score(item content.Item, ctx Context) float64 {
	return Compute(item, ctx).Total
}

// Compute calculates every sub-score and the weighted, focus-adjusted total.
func Compute(item content.Item, ctx Context) Breakdown {
	profile := mood.ProfileOf(ctx.State)

	b := Breakdown{
		Mood:            moodFit(item, profile),
		Time:            timeFit(item.DurationMin, ctx.AvailableMin),
		Energy:          energyFit(item.Intensity, ctx.EnergyLevel, ctx.NoHeavy),
		Preference:      preferenceFit(item, ctx.Prefs),
		Quality:         quality(item.Rating, item.Popularity),
		Novelty:         mood.NoveltyFit(item.Novelty, profile.NoveltyPref) * 100,
		FocusMultiplier: mood.FocusMultiplier(ctx.Focus, item.Type),
	}

	w := profile.Weights
	total := (b.Mood*w.Mood + b.Time*w.Time + b.Energy*w.Energy +
		b.Preference*w.Preference + b.Quality*w.Quality + b.Novelty*w.Novelty) / 100
	b.Total = clamp100(total * b.FocusMultiplier)
	return b
}

// moodFit scores how well the item suits the state's intensity range, genre
// affinities, and tag vocabulary: 40 + 30 + 30 points.
func moodFit(item content.Item, profile mood.StateProfile) float64 {
	// Intensity: full 40 inside the range, 100 points/unit penalty outside.
	var dist float64
	switch {
	case item.Intensity < profile.IntensityMin:
		dist = profile.IntensityMin - item.Intensity
	case item.Intensity > profile.IntensityMax:
		dist = item.Intensity - profile.IntensityMax
	}
	intensityPts := clampRange(40-dist*100, 0, 40)

	// Genres: base 20, +5 per boost tier, −10 per penalty factor.
	genrePts := 20.0
	for _, g := range item.Genres {
		if tier, ok := profile.GenreBoosts[g]; ok {
			genrePts += 5 * tier
		}
		if factor, ok := profile.GenrePenalties[g]; ok {
			genrePts -= 10 * factor
		}
	}
	genrePts = clampRange(genrePts, 0, 30)

	// Tags: fraction of the state vocabulary matched by substring in either
	// direction.
	matched := 0
	for _, vocab := range profile.Tags {
		for _, tag := range item.Tags {
			if substringEither(tag, vocab) {
				matched++
				break
			}
		}
	}
	tagPts := 30 * float64(matched) / float64(len(profile.Tags))

	return clamp100(intensityPts + genrePts + tagPts)
}

// timeFit scores duration against the available window. Unknown durations
// are not penalized. The acceptable window is ±20% of the available minutes;
// shorter items degrade proportionally to a floor of 60, longer items lose
// 150 points per unit-ratio past the window's upper edge.
func timeFit(durationMin, availableMin int) float64 {
	if durationMin <= 0 || availableMin <= 0 {
		return 100
	}
	ratio := float64(durationMin) / float64(availableMin)
	switch {
	case ratio >= 0.8 && ratio <= 1.2:
		return 100
	case ratio < 0.8:
		return 60 + 40*(ratio/0.8)
	default:
		return clamp100(100 - 150*(ratio-1.2))
	}
}

// energyFit maps the 1–5 energy level onto a [0,1] intensity tolerance.
// With the noHeavy flag set, items above 0.5 intensity are forced toward
// zero: linear in the excess, capped at 30.
func energyFit(intensity float64, energyLevel int, noHeavy bool) float64 {
	if noHeavy && intensity > 0.5 {
		return clampRange(30*(1-(intensity-0.5)/0.5), 0, 30)
	}

	if energyLevel < 1 {
		energyLevel = 1
	}
	if energyLevel > 5 {
		energyLevel = 5
	}
	tolerance := float64(energyLevel-1) / 4
	return clamp100(100 - 150*math.Abs(intensity-tolerance))
}

// preferenceFit applies the user's liked/disliked vocabulary: base 50,
// +10/−15 per tag match, +8/−12 per genre match.
func preferenceFit(item content.Item, prefs content.Preferences) float64 {
	score := 50.0
	for _, t := range item.Tags {
		if containsString(prefs.LikedTags, t) {
			score += 10
		}
		if containsString(prefs.DislikedTags, t) {
			score -= 15
		}
	}
	for _, g := range item.Genres {
		if containsString(prefs.LikedGenres, g) {
			score += 8
		}
		if containsString(prefs.DislikedGenres, g) {
			score -= 12
		}
	}
	return clamp100(score)
}

// quality blends provider rating and popularity: base 50, +30×rating when
// rated, +20×popularity.
func quality(rating *float64, popularity float64) float64 {
	score := 50.0
	if rating != nil {
		score += 30 * *rating
	}
	score += 20 * popularity
	return clamp100(score)
}

func substringEither(a, b string) bool {
	return a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clamp100(v float64) float64 { return clampRange(v, 0, 100) }

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
