package content

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingIdentifier signals a raw record with neither a native id nor the
// title+year fallback key. Not recoverable; the caller must discard the record.
var ErrMissingIdentifier = errors.New("record has no usable identifier")

// Heuristic rescale constants for provider numerics.
const (
	ratingScale       = 10.0  // providers rate 0–10
	popularityDivisor = 100.0 // raw popularity ÷ 100, then clamped
	bookDurationMin   = 240   // default long-form reading estimate
)

// Normalizer converts raw provider records into Items. It is stateless apart
// from the clock, which novelty inference needs; inject a fixed clock in tests.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize converts one raw provider record into exactly one Item.
// It performs no I/O and is a pure function of the record and the clock.
func (n *Normalizer) Normalize(raw RawRecord, provider Provider) (Item, error) {
	switch provider {
	case ProviderMovie, ProviderTV:
		return n.normalizeScreen(raw, provider)
	case ProviderBook:
		return n.normalizeBook(raw)
	case ProviderCurated:
		return normalizeCurated(raw)
	default:
		return Item{}, fmt.Errorf("unsupported provider %q", provider)
	}
}

func (n *Normalizer) normalizeScreen(raw RawRecord, provider Provider) (Item, error) {
	title := raw.Title
	date := raw.ReleaseDate
	if provider == ProviderTV {
		title = raw.Name
		date = raw.FirstAirDate
	}
	year := parseYear(date)

	id, err := buildID(provider, raw.ID, title, year)
	if err != nil {
		return Item{}, err
	}

	genres := lowerAll(raw.Genres)
	desc := stripMarkup(raw.Overview)
	text := strings.ToLower(title + " " + desc)

	duration := raw.RuntimeMin
	if provider == ProviderTV && duration == 0 && len(raw.EpisodeRuntimes) > 0 {
		duration = raw.EpisodeRuntimes[0]
	}

	return Item{
		ID:            id,
		Type:          TypeWatch,
		Title:         title,
		Tags:          inferTags(genres, text),
		Genres:        genres,
		Intensity:     inferIntensity(genres, text, false),
		CognitiveLoad: inferCognitiveLoad(genres, text),
		Novelty:       inferScreenNovelty(year, n.now().Year(), genres),
		DurationMin:   duration,
		Popularity:    Clamp01(raw.Popularity / popularityDivisor),
		Rating:        rescaleRating(raw.VoteAverage),
		Link:          raw.URL,
		Source:        string(provider),
		Description:   desc,
		Image:         raw.Image,
	}, nil
}

func (n *Normalizer) normalizeBook(raw RawRecord) (Item, error) {
	id, err := buildID(ProviderBook, raw.ID, raw.Title, raw.FirstPublishYear)
	if err != nil {
		return Item{}, err
	}

	subjects := lowerAll(raw.Subjects)
	desc := stripMarkup(raw.Description)
	text := strings.ToLower(raw.Title + " " + desc)

	duration := raw.DurationMin
	if duration == 0 {
		duration = bookDurationMin
	}

	return Item{
		ID:            id,
		Type:          TypeRead,
		Title:         raw.Title,
		Tags:          inferTags(subjects, text),
		Genres:        subjects,
		Intensity:     inferIntensity(subjects, text, true),
		CognitiveLoad: inferCognitiveLoad(subjects, text),
		Novelty:       inferBookNovelty(subjects),
		DurationMin:   duration,
		Popularity:    Clamp01(raw.Popularity / popularityDivisor),
		Rating:        rescaleRating(raw.VoteAverage),
		Link:          raw.URL,
		Source:        string(ProviderBook),
		Description:   desc,
		Image:         raw.Image,
	}, nil
}

// normalizeCurated trusts the record's own classification: values are clamped
// and lowercased, never inferred.
func normalizeCurated(raw RawRecord) (Item, error) {
	id, err := buildID(ProviderCurated, raw.ID, raw.Title, 0)
	if err != nil {
		return Item{}, err
	}

	typ, err := ParseType(raw.Type)
	if err != nil {
		return Item{}, fmt.Errorf("curated record %s: %w", id, err)
	}

	item := Item{
		ID:          id,
		Type:        typ,
		Title:       raw.Title,
		Tags:        lowerAll(raw.Tags),
		Genres:      lowerAll(raw.Genres),
		DurationMin: raw.DurationMin,
		Popularity:  Clamp01(raw.Popularity),
		Link:        raw.URL,
		Source:      string(ProviderCurated),
		Description: stripMarkup(raw.Description),
		Image:       raw.Image,
	}
	item.Intensity = clampOrDefault(raw.Intensity, 0.3)
	item.CognitiveLoad = clampOrDefault(raw.CognitiveLoad, 0.3)
	item.Novelty = clampOrDefault(raw.Novelty, 0.5)
	if raw.VoteAverage != nil {
		item.Rating = rescaleRating(raw.VoteAverage)
	}
	return item, nil
}

// buildID produces the stable provider-scoped id. Without a native id, the
// fallback key is title+year; for curated records the title alone suffices.
func buildID(provider Provider, nativeID, title string, year int) (string, error) {
	if nativeID != "" {
		return string(provider) + ":" + nativeID, nil
	}
	if title == "" {
		return "", fmt.Errorf("%s record: %w", provider, ErrMissingIdentifier)
	}
	if provider != ProviderCurated && year == 0 {
		return "", fmt.Errorf("%s record %q: %w", provider, title, ErrMissingIdentifier)
	}
	slug := slugify(title)
	if provider == ProviderCurated {
		return string(provider) + ":" + slug, nil
	}
	return fmt.Sprintf("%s:%s-%d", provider, slug, year), nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(date[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}

func rescaleRating(vote *float64) *float64 {
	if vote == nil {
		return nil
	}
	r := Clamp01(*vote / ratingScale)
	return &r
}

func clampOrDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return Clamp01(*v)
}

func lowerAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
