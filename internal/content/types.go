// Package content defines the normalized content item model and the
// feature-inference layer that builds items from raw provider records.
package content

import "fmt"

// Type is the medium classification of a content item. Distinct from a
// request focus: the two are related through the focus multiplier table,
// not equality.
type Type string

const (
	TypeWatch  Type = "watch"
	TypeRead   Type = "read"
	TypeListen Type = "listen"
	TypeMove   Type = "move"
	TypeCreate Type = "create"
	TypeReset  Type = "reset"
)

var types = []Type{TypeWatch, TypeRead, TypeListen, TypeMove, TypeCreate, TypeReset}

// ParseType maps a wire string to a Type.
func ParseType(s string) (Type, error) {
	for _, t := range types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// Item is a single piece of recommendable content. Items are created once by
// the normalizer and never mutated afterwards; scoring and selection only
// read them.
type Item struct {
	ID            string   `json:"id"` // provider-scoped, globally unique
	Type          Type     `json:"type"`
	Title         string   `json:"title"`
	Tags          []string `json:"tags"`   // free-form lowercase strings
	Genres        []string `json:"genres"` // lowercase
	Intensity     float64  `json:"intensity"`      // [0,1]
	CognitiveLoad float64  `json:"cognitive_load"` // [0,1]
	Novelty       float64  `json:"novelty"`        // [0,1]
	DurationMin   int      `json:"duration_min,omitempty"` // 0 = unknown
	Popularity    float64  `json:"popularity"`             // [0,1]
	Rating        *float64 `json:"rating,omitempty"`       // [0,1], nil = unrated
	Link          string   `json:"link,omitempty"`
	Source        string   `json:"source"`
	Description   string   `json:"description,omitempty"`
	Image         string   `json:"image,omitempty"`
}

// PrimaryGenre returns the first genre, or "unknown" when the item has none.
// The diversity reranker keys its genre caps on this.
func (it Item) PrimaryGenre() string {
	if len(it.Genres) == 0 {
		return "unknown"
	}
	return it.Genres[0]
}

// Preferences is the per-user liked/disliked vocabulary read by the scorer.
// Owned by the preferences store; the scoring core only reads it.
type Preferences struct {
	LikedTags      []string `json:"liked_tags"`
	DislikedTags   []string `json:"disliked_tags"`
	LikedGenres    []string `json:"liked_genres"`
	DislikedGenres []string `json:"disliked_genres"`

	// Tolerance scalars in [0,1]; carried for the profile store but not
	// consulted by the rule-based scorer.
	IntensityTolerance float64 `json:"intensity_tolerance"`
	NoveltyTolerance   float64 `json:"novelty_tolerance"`
}

// Clamp01 bounds v to [0,1]. Provider numerics are noisy; the normalization
// policy is to correct out-of-range values, never to reject them.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
