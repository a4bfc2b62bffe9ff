package prefs

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

// mockStore is an in-memory Store with call counting.
type mockStore struct {
	data    map[string]string
	getAlls int
	setErr  error
	getErr  error
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string]string{}}
}

func (m *mockStore) SetPrefKey(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStore) GetPrefKey(key string) (string, error) {
	return m.data[key], nil
}

func (m *mockStore) GetAllPrefKeys() (map[string]string, error) {
	m.getAlls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestGetPreferencesDefaults(t *testing.T) {
	m := NewManager(newMockStore())

	p, err := m.GetPreferences()
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if p.IntensityTolerance != 0.5 || p.NoveltyTolerance != 0.5 {
		t.Errorf("tolerances = %v/%v, want 0.5 defaults", p.IntensityTolerance, p.NoveltyTolerance)
	}
	if p.LikedTags != nil || p.DislikedGenres != nil {
		t.Errorf("lists should be empty on a fresh store: %+v", p)
	}
}

func TestGetPreferencesAssemblesStoredKeys(t *testing.T) {
	store := newMockStore()
	store.data[KeyLikedTags] = `["cozy","funny"]`
	store.data[KeyDislikedGenres] = `["horror"]`
	store.data[KeyIntensityTolerance] = "0.3"

	m := NewManager(store)
	p, err := m.GetPreferences()
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}

	if !reflect.DeepEqual(p.LikedTags, []string{"cozy", "funny"}) {
		t.Errorf("LikedTags = %v", p.LikedTags)
	}
	if !reflect.DeepEqual(p.DislikedGenres, []string{"horror"}) {
		t.Errorf("DislikedGenres = %v", p.DislikedGenres)
	}
	if p.IntensityTolerance != 0.3 {
		t.Errorf("IntensityTolerance = %v, want 0.3", p.IntensityTolerance)
	}
	// Unset scalar keeps its default.
	if p.NoveltyTolerance != 0.5 {
		t.Errorf("NoveltyTolerance = %v, want 0.5", p.NoveltyTolerance)
	}
}

func TestGetPreferencesCachesWithinTTL(t *testing.T) {
	store := newMockStore()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m := NewManagerWithClock(store, clock, 60*time.Second)

	for i := 0; i < 3; i++ {
		if _, err := m.GetPreferences(); err != nil {
			t.Fatalf("GetPreferences %d: %v", i, err)
		}
	}
	if store.getAlls != 1 {
		t.Errorf("store hit %d times within TTL, want 1", store.getAlls)
	}

	clock.advance(61 * time.Second)
	if _, err := m.GetPreferences(); err != nil {
		t.Fatalf("GetPreferences after TTL: %v", err)
	}
	if store.getAlls != 2 {
		t.Errorf("store hit %d times after TTL expiry, want 2", store.getAlls)
	}
}

func TestSetFieldInvalidatesCache(t *testing.T) {
	store := newMockStore()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m := NewManagerWithClock(store, clock, 60*time.Second)

	if _, err := m.GetPreferences(); err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if err := m.SetField(KeyLikedTags, []string{"cozy"}); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	p, err := m.GetPreferences()
	if err != nil {
		t.Fatalf("GetPreferences after set: %v", err)
	}
	if !reflect.DeepEqual(p.LikedTags, []string{"cozy"}) {
		t.Errorf("LikedTags = %v, stale cache served after SetField", p.LikedTags)
	}
}

func TestSetFieldListEncodings(t *testing.T) {
	store := newMockStore()
	m := NewManager(store)

	// Typed slice, interface slice, and pre-encoded JSON all land identically.
	if err := m.SetField(KeyLikedTags, []string{"a", "b"}); err != nil {
		t.Fatalf("[]string: %v", err)
	}
	if err := m.SetField(KeyDislikedTags, []interface{}{"c", "d"}); err != nil {
		t.Fatalf("[]interface{}: %v", err)
	}
	if err := m.SetField(KeyLikedGenres, `["e","f"]`); err != nil {
		t.Fatalf("JSON string: %v", err)
	}

	if store.data[KeyLikedTags] != `["a","b"]` {
		t.Errorf("liked_tags = %q", store.data[KeyLikedTags])
	}
	if store.data[KeyDislikedTags] != `["c","d"]` {
		t.Errorf("disliked_tags = %q", store.data[KeyDislikedTags])
	}
	if store.data[KeyLikedGenres] != `["e","f"]` {
		t.Errorf("liked_genres = %q", store.data[KeyLikedGenres])
	}

	if err := m.SetField(KeyLikedTags, "not json"); err == nil {
		t.Error("accepted malformed list value")
	}
	if err := m.SetField(KeyLikedTags, []interface{}{1, 2}); err == nil {
		t.Error("accepted non-string list elements")
	}
}

func TestSetFieldScalarEncodings(t *testing.T) {
	store := newMockStore()
	m := NewManager(store)

	if err := m.SetField(KeyIntensityTolerance, 0.3); err != nil {
		t.Fatalf("float64: %v", err)
	}
	if store.data[KeyIntensityTolerance] != "0.3" {
		t.Errorf("intensity_tolerance = %q", store.data[KeyIntensityTolerance])
	}

	// Out-of-range values clamp rather than error.
	if err := m.SetField(KeyNoveltyTolerance, 3.5); err != nil {
		t.Fatalf("oversized float: %v", err)
	}
	if store.data[KeyNoveltyTolerance] != "1" {
		t.Errorf("novelty_tolerance = %q, want clamped 1", store.data[KeyNoveltyTolerance])
	}

	if err := m.SetField(KeyIntensityTolerance, "0.7"); err != nil {
		t.Fatalf("numeric string: %v", err)
	}
	if store.data[KeyIntensityTolerance] != "0.7" {
		t.Errorf("intensity_tolerance = %q", store.data[KeyIntensityTolerance])
	}

	if err := m.SetField(KeyIntensityTolerance, "high"); err == nil {
		t.Error("accepted non-numeric scalar")
	}
}

func TestSetFieldUnknownKey(t *testing.T) {
	m := NewManager(newMockStore())
	if err := m.SetField("favorite_color", "blue"); err == nil {
		t.Error("accepted unknown preference key")
	}
}

func TestSetFieldStoreError(t *testing.T) {
	store := newMockStore()
	store.setErr = fmt.Errorf("disk full")
	m := NewManager(store)

	if err := m.SetField(KeyLikedTags, []string{"a"}); err == nil {
		t.Error("expected store error to propagate")
	}
}
