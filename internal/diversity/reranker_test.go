package diversity

import (
	"testing"

	"github.com/unwindhq/unwind/internal/content"
)

func scored(id, genre string, tags []string, score float64) Scored {
	return Scored{
		Item:  content.Item{ID: id, Genres: []string{genre}, Tags: tags},
		Score: score,
	}
}

func ids(s []Scored) []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Item.ID
	}
	return out
}

func TestClusterKey(t *testing.T) {
	tests := []struct {
		tags []string
		want string
	}{
		{nil, ""},
		{[]string{"calm"}, "calm"},
		{[]string{"cozy", "calm"}, "calm|cozy"},
		// Only the first two tags participate.
		{[]string{"zebra", "apple", "calm"}, "apple|zebra"},
	}
	for _, tt := range tests {
		item := content.Item{Tags: tt.tags}
		if got := ClusterKey(item); got != tt.want {
			t.Errorf("ClusterKey(%v) = %q, want %q", tt.tags, got, tt.want)
		}
	}
}

func TestSelectEmpty(t *testing.T) {
	if got := Select(nil, 5); got != nil {
		t.Errorf("Select(nil) = %v, want nil", got)
	}
}

func TestSelectReturnsMinOfTopNAndPool(t *testing.T) {
	pool := []Scored{
		scored("a", "comedy", []string{"calm"}, 90),
		scored("b", "drama", []string{"cozy"}, 80),
	}

	if got := Select(pool, 5); len(got) != 2 {
		t.Errorf("len = %d, want full pool of 2", len(got))
	}
	if got := Select(pool, 1); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if got := Select(pool, 0); len(got) != 2 {
		t.Errorf("topN=0 should use the default size, got len %d", len(got))
	}
}

func TestSelectPrefersVarietyOverRawScore(t *testing.T) {
	// Three near-identical comedies and one lower-scored documentary.
	// The third comedy hits both the genre and cluster cap, so the
	// documentary makes the cut despite its score.
	pool := []Scored{
		scored("c1", "comedy", []string{"calm", "cozy"}, 90),
		scored("c2", "comedy", []string{"calm", "cozy"}, 89),
		scored("c3", "comedy", []string{"calm", "cozy"}, 88),
		scored("d1", "documentary", []string{"learning"}, 50),
	}

	got := ids(Select(pool, 3))
	want := []string{"c1", "c2", "d1"}
	if len(got) != len(want) {
		t.Fatalf("selected %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selected %v, want %v", got, want)
			break
		}
	}
}

func TestSelectBackfillsWhenPoolIsUniform(t *testing.T) {
	// Everything shares one genre and one cluster. Caps admit two, then the
	// backfill pass must still deliver the requested count, highest first.
	pool := []Scored{
		scored("a", "comedy", []string{"calm", "cozy"}, 90),
		scored("b", "comedy", []string{"calm", "cozy"}, 85),
		scored("c", "comedy", []string{"calm", "cozy"}, 80),
		scored("d", "comedy", []string{"calm", "cozy"}, 75),
	}

	got := ids(Select(pool, 3))
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("selected %v, want %v", got, want)
		}
	}
}

func TestSelectRelaxedGenreCapAdmitsNewCluster(t *testing.T) {
	// Two comedies fill the genre's strict cap; a third comedy with an
	// untouched tag cluster gets in via the relaxed second pass, ahead of
	// backfill-only candidates.
	pool := []Scored{
		scored("c1", "comedy", []string{"calm", "cozy"}, 90),
		scored("c2", "comedy", []string{"calm", "cozy"}, 89),
		scored("c3", "comedy", []string{"quirky", "witty"}, 88),
		scored("c4", "comedy", []string{"calm", "cozy"}, 87),
	}

	got := ids(Select(pool, 3))
	want := []string{"c1", "c2", "c3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("selected %v, want %v", got, want)
		}
	}
}

func TestSelectDeterministicOnEqualScores(t *testing.T) {
	pool := []Scored{
		scored("first", "comedy", []string{"a"}, 80),
		scored("second", "drama", []string{"b"}, 80),
		scored("third", "horror", []string{"c"}, 80),
	}

	for run := 0; run < 10; run++ {
		got := ids(Select(pool, 3))
		for i, want := range []string{"first", "second", "third"} {
			if got[i] != want {
				t.Fatalf("run %d: selected %v, input order not preserved", run, got)
			}
		}
	}
}

func TestSelectUniqueItems(t *testing.T) {
	pool := make([]Scored, 0, 20)
	genres := []string{"comedy", "drama", "horror", "action"}
	for i := 0; i < 20; i++ {
		pool = append(pool, scored(
			string(rune('a'+i)),
			genres[i%len(genres)],
			[]string{genres[i%len(genres)], string(rune('a' + i))},
			float64(100-i),
		))
	}

	got := Select(pool, 12)
	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
	seen := map[string]bool{}
	for _, s := range got {
		if seen[s.Item.ID] {
			t.Errorf("item %s selected twice", s.Item.ID)
		}
		seen[s.Item.ID] = true
	}
}
