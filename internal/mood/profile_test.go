package mood

import (
	"testing"

	"github.com/unwindhq/unwind/internal/content"
)

func TestParseState(t *testing.T) {
	for _, st := range States {
		got, err := ParseState(string(st))
		if err != nil {
			t.Errorf("ParseState(%q) error: %v", st, err)
		}
		if got != st {
			t.Errorf("ParseState(%q) = %q", st, got)
		}
	}

	if _, err := ParseState("furious"); err == nil {
		t.Error("ParseState accepted unknown state")
	}
	if _, err := ParseState(""); err == nil {
		t.Error("ParseState accepted empty state")
	}
}

func TestParseFocus(t *testing.T) {
	for _, f := range Focuses {
		got, err := ParseFocus(string(f))
		if err != nil {
			t.Errorf("ParseFocus(%q) error: %v", f, err)
		}
		if got != f {
			t.Errorf("ParseFocus(%q) = %q", f, got)
		}
	}

	if _, err := ParseFocus("sleep"); err == nil {
		t.Error("ParseFocus accepted unknown focus")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("built-in profiles invalid: %v", err)
	}
}

func TestProfileOfPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ProfileOf did not panic on unknown state")
		}
	}()
	ProfileOf(State("furious"))
}

func TestFocusMultiplier(t *testing.T) {
	tests := []struct {
		focus Focus
		typ   content.Type
		want  float64
	}{
		{FocusWatch, content.TypeWatch, 1.1},
		{FocusWatch, content.TypeListen, 0.8},
		{FocusListen, content.TypeWatch, 0.7},
		{FocusRead, content.TypeRead, 1.1},
		{FocusMove, content.TypeMove, 1.1},
		// Unlisted combinations default to neutral.
		{FocusMove, content.TypeWatch, 1.0},
		{FocusWatch, content.TypeRead, 1.0},
	}
	for _, tt := range tests {
		if got := FocusMultiplier(tt.focus, tt.typ); got != tt.want {
			t.Errorf("FocusMultiplier(%s, %s) = %v, want %v", tt.focus, tt.typ, got, tt.want)
		}
	}
}

func TestFocusMultipliersIsCopy(t *testing.T) {
	m := FocusMultipliers()
	m[FocusWatch][content.TypeWatch] = 99

	if got := FocusMultiplier(FocusWatch, content.TypeWatch); got != 1.1 {
		t.Errorf("mutating the returned table leaked into the package: %v", got)
	}
}

func TestNoveltyFit(t *testing.T) {
	tests := []struct {
		name    string
		novelty float64
		pref    NoveltyPref
		want    float64
	}{
		{"low pref, familiar item", 0.2, NoveltyLow, 1.0},
		{"low pref, middling item", 0.5, NoveltyLow, 0.6},
		{"low pref, novel item", 0.9, NoveltyLow, 0.25},
		{"high pref, novel item", 0.8, NoveltyHigh, 1.0},
		{"high pref, middling item", 0.5, NoveltyHigh, 0.6},
		{"high pref, familiar item", 0.1, NoveltyHigh, 0.2},
		{"medium pref, middling item", 0.5, NoveltyMedium, 1.0},
		{"medium pref, extreme item", 0.9, NoveltyMedium, 0.3},
		{"medium pref, very familiar item", 0.1, NoveltyMedium, 0.3},
		{"medium pref, shoulder", 0.25, NoveltyMedium, 0.65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NoveltyFit(tt.novelty, tt.pref); got != tt.want {
				t.Errorf("NoveltyFit(%v, %s) = %v, want %v", tt.novelty, tt.pref, got, tt.want)
			}
		})
	}
}
