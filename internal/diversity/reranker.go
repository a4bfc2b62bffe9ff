// Package diversity selects a fixed-size result set from scored candidates,
// trading a little score for variety in genres and tag clusters.
package diversity

import (
	"sort"
	"strings"

	"github.com/unwindhq/unwind/internal/content"
)

// DefaultTopN is the result size when the caller passes topN <= 0.
const DefaultTopN = 12

const (
	passOneGenreCap = 2
	passTwoGenreCap = 3
	tagClusterCap   = 2
)

// Scored pairs a candidate item with its score and breakdown-free total.
type Scored struct {
	Item  content.Item
	Score float64
}

// ClusterKey builds the diversity grouping key from an item's first two tags,
// lexicographically sorted and joined. Items with fewer than two tags key on
// whatever they have.
func ClusterKey(item content.Item) string {
	tags := item.Tags
	if len(tags) > 2 {
		tags = tags[:2]
	}
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// Select picks min(topN, len(candidates)) items balancing score and variety.
// Three greedy passes over the score-descending list:
//
//  1. Admit while the primary genre has < 2 admissions and the tag cluster
//     has < 2 admissions.
//  2. Admit skipped candidates whose tag cluster is still unused, while the
//     primary genre stays below 3.
//  3. Backfill with the highest-scored leftovers regardless of constraints.
//
// The sort is stable, so equal scores keep their input order and the whole
// selection is deterministic.
func Select(candidates []Scored, topN int) []Scored {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(candidates) == 0 {
		return nil
	}

	sorted := append([]Scored(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	selected := make([]Scored, 0, topN)
	taken := make([]bool, len(sorted))
	genreCount := map[string]int{}
	clusterCount := map[string]int{}

	admit := func(i int) {
		taken[i] = true
		genreCount[sorted[i].Item.PrimaryGenre()]++
		clusterCount[ClusterKey(sorted[i].Item)]++
		selected = append(selected, sorted[i])
	}

	// Pass 1: strict genre and cluster caps.
	for i := range sorted {
		if len(selected) >= topN {
			return selected
		}
		genre := sorted[i].Item.PrimaryGenre()
		cluster := ClusterKey(sorted[i].Item)
		if genreCount[genre] < passOneGenreCap && clusterCount[cluster] < tagClusterCap {
			admit(i)
		}
	}

	// Pass 2: unused clusters only, relaxed genre cap.
	for i := range sorted {
		if len(selected) >= topN {
			return selected
		}
		if taken[i] {
			continue
		}
		genre := sorted[i].Item.PrimaryGenre()
		if clusterCount[ClusterKey(sorted[i].Item)] == 0 && genreCount[genre] < passTwoGenreCap {
			admit(i)
		}
	}

	// Pass 3: fill remaining slots by score alone.
	for i := range sorted {
		if len(selected) >= topN {
			break
		}
		if !taken[i] {
			admit(i)
		}
	}

	return selected
}
