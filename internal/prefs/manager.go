// Package prefs provides cached, structured access to the single-user
// preference vocabulary stored in SQLite.
package prefs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/unwindhq/unwind/internal/content"
)

// Store defines the storage operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	SetPrefKey(key, value string) error
	GetPrefKey(key string) (string, error)
	GetAllPrefKeys() (map[string]string, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Known preference keys. List-valued keys hold JSON string arrays, scalar
// keys hold decimal strings.
const (
	KeyLikedTags          = "liked_tags"
	KeyDislikedTags       = "disliked_tags"
	KeyLikedGenres        = "liked_genres"
	KeyDislikedGenres     = "disliked_genres"
	KeyIntensityTolerance = "intensity_tolerance"
	KeyNoveltyTolerance   = "novelty_tolerance"
)

var listKeys = map[string]bool{
	KeyLikedTags: true, KeyDislikedTags: true,
	KeyLikedGenres: true, KeyDislikedGenres: true,
}

var scalarKeys = map[string]bool{
	KeyIntensityTolerance: true, KeyNoveltyTolerance: true,
}

// Manager caches the assembled Preferences with a TTL so per-request loads
// don't hit SQLite every time.
type Manager struct {
	store Store
	clock Clock
	ttl   time.Duration

	mu       sync.RWMutex
	cached   *content.Preferences
	cachedAt time.Time
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store Store) *Manager {
	return &Manager{store: store, clock: realClock{}, ttl: 60 * time.Second}
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store Store, clock Clock, ttl time.Duration) *Manager {
	return &Manager{store: store, clock: clock, ttl: ttl}
}

// GetPreferences reads all preference keys from storage (or cache) and
// assembles a Preferences value. An empty store yields sane defaults.
func (m *Manager) GetPreferences() (content.Preferences, error) {
	m.mu.RLock()
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		p := *m.cached
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		return *m.cached, nil
	}

	keys, err := m.store.GetAllPrefKeys()
	if err != nil {
		return content.Preferences{}, fmt.Errorf("loading preference keys: %w", err)
	}

	p := buildPreferences(keys)
	m.cached = &p
	m.cachedAt = m.clock.Now()
	return p, nil
}

// SetField validates and persists one preference key, then invalidates the
// cache. List keys accept []string or a JSON array string; scalar keys
// accept float64 or a decimal string and are clamped to [0,1].
func (m *Manager) SetField(key string, value interface{}) error {
	var str string
	switch {
	case listKeys[key]:
		s, err := encodeList(value)
		if err != nil {
			return fmt.Errorf("preference key %q: %w", key, err)
		}
		str = s
	case scalarKeys[key]:
		s, err := encodeScalar(value)
		if err != nil {
			return fmt.Errorf("preference key %q: %w", key, err)
		}
		str = s
	default:
		return fmt.Errorf("unknown preference key %q", key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SetPrefKey(key, str); err != nil {
		return fmt.Errorf("setting preference key %q: %w", key, err)
	}

	m.cached = nil
	return nil
}

func buildPreferences(keys map[string]string) content.Preferences {
	p := content.Preferences{
		IntensityTolerance: 0.5,
		NoveltyTolerance:   0.5,
	}
	p.LikedTags = decodeList(keys[KeyLikedTags])
	p.DislikedTags = decodeList(keys[KeyDislikedTags])
	p.LikedGenres = decodeList(keys[KeyLikedGenres])
	p.DislikedGenres = decodeList(keys[KeyDislikedGenres])
	if v, ok := decodeScalar(keys[KeyIntensityTolerance]); ok {
		p.IntensityTolerance = v
	}
	if v, ok := decodeScalar(keys[KeyNoveltyTolerance]); ok {
		p.NoveltyTolerance = v
	}
	return p
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

func decodeScalar(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return content.Clamp01(v), true
}

func encodeList(value interface{}) (string, error) {
	switch v := value.(type) {
	case []string:
		b, err := json.Marshal(v)
		return string(b), err
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return "", fmt.Errorf("list element %v is not a string", e)
			}
			list = append(list, s)
		}
		b, err := json.Marshal(list)
		return string(b), err
	case string:
		var list []string
		if err := json.Unmarshal([]byte(v), &list); err != nil {
			return "", fmt.Errorf("expected a JSON string array: %w", err)
		}
		return v, nil
	default:
		return "", fmt.Errorf("unsupported list value type %T", value)
	}
}

func encodeScalar(value interface{}) (string, error) {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(content.Clamp01(v), 'f', -1, 64), nil
	case int:
		return strconv.FormatFloat(content.Clamp01(float64(v)), 'f', -1, 64), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", fmt.Errorf("expected a number: %w", err)
		}
		return strconv.FormatFloat(content.Clamp01(f), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported scalar value type %T", value)
	}
}
