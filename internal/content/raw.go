package content

// Provider identifies which upstream catalog a raw record came from and
// therefore which inference rules apply during normalization.
type Provider string

const (
	ProviderMovie Provider = "movie"
	ProviderTV    Provider = "tv"
	ProviderBook  Provider = "book"
	// ProviderCurated records are hand-authored practices (move/create/reset
	// items). They arrive pre-classified, so normalization only clamps and
	// lowercases instead of inferring.
	ProviderCurated Provider = "curated"
)

// RawRecord is the superset of fields the supported providers emit. Each
// provider populates its own subset; the normalizer picks per provider.
type RawRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`  // tv series name
	Title string `json:"title"` // movie/book title

	Overview    string `json:"overview"`    // movie/tv synopsis
	Description string `json:"description"` // book/curated description

	Genres   []string `json:"genres"`
	Subjects []string `json:"subjects"` // book subject tags

	ReleaseDate      string `json:"release_date"`       // movie, YYYY-MM-DD
	FirstAirDate     string `json:"first_air_date"`     // tv, YYYY-MM-DD
	FirstPublishYear int    `json:"first_publish_year"` // book

	VoteAverage *float64 `json:"vote_average"` // native 0–10 rating
	Popularity  float64  `json:"popularity"`   // native unbounded popularity

	RuntimeMin      int   `json:"runtime"`         // movie minutes
	EpisodeRuntimes []int `json:"episode_run_time"` // tv per-episode minutes

	URL   string `json:"url"`
	Image string `json:"image"`

	// Curated-only fields: trusted values passed through with clamping.
	Type          string   `json:"type"`
	Tags          []string `json:"tags"`
	Intensity     *float64 `json:"intensity"`
	CognitiveLoad *float64 `json:"cognitive_load"`
	Novelty       *float64 `json:"novelty"`
	DurationMin   int      `json:"duration_min"`
}
