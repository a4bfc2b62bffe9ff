package content

import (
	"sort"
	"strings"
)

// Inference rule tables. Each inference function below is pure: it takes
// already-lowercased genre lists and text and returns one attribute.

var intensityHigh = map[string]bool{
	"action": true, "horror": true, "thriller": true, "war": true, "crime": true,
}

var intensityMedium = map[string]bool{
	"drama": true, "adventure": true, "mystery": true,
	"science fiction": true, "fantasy": true,
}

var intensityLow = map[string]bool{
	"comedy": true, "family": true, "romance": true,
	"animation": true, "music": true,
}

var raisingKeywords = []string{"intense", "violent", "brutal", "gritty", "relentless"}
var loweringKeywords = []string{"gentle", "calm", "cozy", "soothing", "quiet"}

// inferIntensity derives the [0,1] emotional/sensory weight from genre
// buckets, nudged by explicit intensity language in the text. Text-only
// media (books) start from a lower base throughout.
func inferIntensity(genres []string, text string, textual bool) float64 {
	base := 0.45
	switch {
	case anyGenre(genres, intensityHigh):
		base = 0.75
	case anyGenre(genres, intensityMedium):
		base = 0.55
	case anyGenre(genres, intensityLow):
		base = 0.3
	}
	if textual {
		base -= 0.15
	}

	if containsAny(text, raisingKeywords) {
		base += 0.2
	}
	if containsAny(text, loweringKeywords) {
		base -= 0.2
	}
	return Clamp01(base)
}

var loadHigh = map[string]bool{
	"documentary": true, "mystery": true, "science fiction": true,
	"history": true, "war": true,
}

var loadLow = map[string]bool{
	"comedy": true, "family": true, "animation": true, "music": true,
}

var loadRaising = []string{"complex", "cerebral", "philosoph", "thought-provoking"}
var loadLowering = []string{"easy", "light", "simple"}

// inferCognitiveLoad derives the [0,1] mental effort estimate.
func inferCognitiveLoad(genres []string, text string) float64 {
	base := 0.5
	switch {
	case anyGenre(genres, loadHigh):
		base = 0.7
	case anyGenre(genres, loadLow):
		base = 0.3
	}

	if containsAny(text, loadRaising) {
		base += 0.2
	}
	if containsAny(text, loadLowering) {
		base -= 0.2
	}
	return Clamp01(base)
}

var speculativeGenres = map[string]bool{
	"science fiction": true, "fantasy": true, "speculative": true,
}

// inferScreenNovelty is the recency heuristic for time-bound media.
// releaseYear of 0 means the provider gave no date.
func inferScreenNovelty(releaseYear, nowYear int, genres []string) float64 {
	novelty := 0.5
	if releaseYear > 0 {
		switch age := nowYear - releaseYear; {
		case age < 2:
			novelty = 0.8
		case age < 5:
			novelty = 0.6
		case age < 10:
			novelty = 0.4
		default:
			novelty = 0.2
		}
	}
	if anyGenre(genres, speculativeGenres) {
		novelty += 0.1
	}
	return Clamp01(novelty)
}

var classicSubjects = []string{"classic", "historical"}

// inferBookNovelty defaults lower than screen media: publish years say little
// about how novel a book feels, so subjects carry the signal.
func inferBookNovelty(subjects []string) float64 {
	novelty := 0.4
	if anyGenre(subjects, speculativeGenres) {
		novelty += 0.15
	}
	for _, s := range subjects {
		if containsAny(s, classicSubjects) {
			novelty -= 0.15
			break
		}
	}
	return Clamp01(novelty)
}

// tagKeywords are matched as substrings against title + description.
var tagKeywords = []string{
	"faith", "mindful", "cozy", "uplifting", "nostalgic", "romantic",
	"funny", "dark", "epic", "gentle", "quiet", "inspiring",
}

// genreTags derives tags from genre membership.
var genreTags = map[string][]string{
	"comedy":      {"funny", "light"},
	"family":      {"family", "cozy"},
	"romance":     {"romantic"},
	"horror":      {"dark"},
	"thriller":    {"dark", "intense"},
	"action":      {"intense", "fast"},
	"adventure":   {"adventure", "epic"},
	"documentary": {"learning"},
	"history":     {"learning"},
	"animation":   {"light"},
	"music":       {"calm"},
	"fantasy":     {"epic"},
}

// inferTags derives the free-form tag set from genre membership and keyword
// hits in the text. Output is deduplicated and sorted for determinism.
func inferTags(genres []string, text string) []string {
	seen := map[string]bool{}
	for _, g := range genres {
		for _, t := range genreTags[g] {
			seen[t] = true
		}
	}
	for _, kw := range tagKeywords {
		if strings.Contains(text, kw) {
			seen[kw] = true
		}
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func anyGenre(genres []string, set map[string]bool) bool {
	for _, g := range genres {
		if set[g] {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
