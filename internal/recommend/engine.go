// Package recommend composes feature-normalized items, state profiles,
// scoring, diversity selection, and explanations into one request/response
// cycle. The engine is pure: it performs no I/O and holds no mutable state
// between invocations.
package recommend

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/unwindhq/unwind/internal/content"
	"github.com/unwindhq/unwind/internal/diversity"
	"github.com/unwindhq/unwind/internal/explain"
	"github.com/unwindhq/unwind/internal/mood"
	"github.com/unwindhq/unwind/internal/scoring"
)

// Request is one recommendation query.
type Request struct {
	State        mood.State `json:"state"`
	Focus        mood.Focus `json:"focus"`
	AvailableMin int        `json:"available_min"`
	EnergyLevel  int        `json:"energy_level"` // 1–5
	NoHeavy      bool       `json:"no_heavy"`
	TopN         int        `json:"top_n,omitempty"` // 0 = default 12
}

// Recommendation is one ranked output item with its generated explanation.
type Recommendation struct {
	ID          string       `json:"id"`
	Type        content.Type `json:"type"`
	Title       string       `json:"title"`
	Link        string       `json:"link,omitempty"`
	Score       float64      `json:"score"`
	Tags        []string     `json:"tags"`
	Source      string       `json:"source"`
	Description string       `json:"description,omitempty"`
	Image       string       `json:"image,omitempty"`
	Why         string       `json:"why"`
}

// Result is the engine's full response.
type Result struct {
	State           mood.State       `json:"state"`
	Focus           mood.Focus       `json:"focus"`
	TotalCandidates int              `json:"total_candidates"`
	Recommendations []Recommendation `json:"recommendations"`
}

// focusTypes is the per-focus content-type allow-list. move/create/reset are
// exact; the media focuses admit close crossovers (music videos, audiobooks).
var focusTypes = map[mood.Focus][]content.Type{
	mood.FocusWatch:  {content.TypeWatch, content.TypeListen},
	mood.FocusListen: {content.TypeListen, content.TypeWatch},
	mood.FocusRead:   {content.TypeRead, content.TypeListen},
	mood.FocusMove:   {content.TypeMove},
	mood.FocusCreate: {content.TypeCreate},
	mood.FocusReset:  {content.TypeReset},
}

const scoreConcurrency = 4

// Engine generates recommendations. Safe for concurrent use; every request
// allocates its own working state.
type Engine struct {
	topN int
}

// NewEngine creates an Engine. topN <= 0 selects the default result size.
func NewEngine(topN int) *Engine {
	if topN <= 0 {
		topN = diversity.DefaultTopN
	}
	return &Engine{topN: topN}
}

// Generate runs the full cycle: filter the pool by focus compatibility,
// score every remaining candidate, diversify to top-N, and attach
// explanations. Pure computation over its inputs.
func (e *Engine) Generate(ctx context.Context, req Request, pool []content.Item, prefs content.Preferences) (Result, error) {
	if _, err := mood.ParseState(string(req.State)); err != nil {
		return Result{}, fmt.Errorf("invalid request: %w", err)
	}
	if _, err := mood.ParseFocus(string(req.Focus)); err != nil {
		return Result{}, fmt.Errorf("invalid request: %w", err)
	}

	sctx := scoring.Context{
		State:        req.State,
		Focus:        req.Focus,
		AvailableMin: req.AvailableMin,
		EnergyLevel:  req.EnergyLevel,
		NoHeavy:      req.NoHeavy,
		Prefs:        prefs,
	}

	candidates := filterByFocus(pool, req.Focus)

	scored := make([]diversity.Scored, len(candidates))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	for i, item := range candidates {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			scored[i] = diversity.Scored{Item: item, Score: scoring.Score(item, sctx)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("scoring candidates: %w", err)
	}

	topN := req.TopN
	if topN <= 0 {
		topN = e.topN
	}
	selected := diversity.Select(scored, topN)

	recs := make([]Recommendation, 0, len(selected))
	for _, s := range selected {
		b := scoring.Compute(s.Item, sctx)
		recs = append(recs, Recommendation{
			ID:          s.Item.ID,
			Type:        s.Item.Type,
			Title:       s.Item.Title,
			Link:        s.Item.Link,
			Score:       s.Score,
			Tags:        s.Item.Tags,
			Source:      s.Item.Source,
			Description: s.Item.Description,
			Image:       s.Item.Image,
			Why:         explain.Why(s.Item, b, req.State, req.AvailableMin),
		})
	}

	return Result{
		State:           req.State,
		Focus:           req.Focus,
		TotalCandidates: len(candidates),
		Recommendations: recs,
	}, nil
}

// Breakdown exposes the scorer's factor decomposition for one item under one
// request. Used by introspection tooling; formulas are shared with Generate.
func (e *Engine) Breakdown(item content.Item, req Request, prefs content.Preferences) scoring.Breakdown {
	return scoring.Compute(item, scoring.Context{
		State:        req.State,
		Focus:        req.Focus,
		AvailableMin: req.AvailableMin,
		EnergyLevel:  req.EnergyLevel,
		NoHeavy:      req.NoHeavy,
		Prefs:        prefs,
	})
}

func filterByFocus(pool []content.Item, focus mood.Focus) []content.Item {
	allowed := focusTypes[focus]
	out := make([]content.Item, 0, len(pool))
	for _, item := range pool {
		for _, t := range allowed {
			if item.Type == t {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
