package gen

import "testing"

func TestPickPrefersFlash(t *testing.T) {
	candidates := []Candidate{
		{Name: "models/gemini-1.5-pro", Methods: []string{"generateContent"}},
		{Name: "models/gemini-1.5-flash", Methods: []string{"generateContent"}},
		{Name: "models/embedding-001", Methods: []string{"embedContent"}},
	}
	if got := Pick(candidates); got != "gemini-1.5-flash" {
		t.Errorf("Pick = %q, want gemini-1.5-flash", got)
	}
}

func TestPickNewestVersionWins(t *testing.T) {
	candidates := []Candidate{
		{Name: "models/gemini-1.5-flash", Methods: []string{"generateContent"}},
		{Name: "models/gemini-2.0-flash", Methods: []string{"generateContent"}},
	}
	if got := Pick(candidates); got != "gemini-2.0-flash" {
		t.Errorf("Pick = %q, want gemini-2.0-flash", got)
	}
}

func TestPickSkipsSmallFlashWhenFullAvailable(t *testing.T) {
	candidates := []Candidate{
		{Name: "models/gemini-1.5-flash-8b", Methods: []string{"generateContent"}},
		{Name: "models/gemini-1.5-flash", Methods: []string{"generateContent"}},
	}
	if got := Pick(candidates); got != "gemini-1.5-flash" {
		t.Errorf("Pick = %q, want gemini-1.5-flash", got)
	}
}

func TestPickFallsBackToPro(t *testing.T) {
	candidates := []Candidate{
		{Name: "models/gemini-1.5-pro", Methods: []string{"generateContent"}},
		{Name: "models/embedding-001", Methods: []string{"embedContent"}},
	}
	if got := Pick(candidates); got != "gemini-1.5-pro" {
		t.Errorf("Pick = %q, want gemini-1.5-pro", got)
	}
}

func TestPickDefaultWhenNothingUsable(t *testing.T) {
	if got := Pick(nil); got != DefaultModel {
		t.Errorf("Pick(nil) = %q, want %q", got, DefaultModel)
	}
	candidates := []Candidate{
		{Name: "models/embedding-001", Methods: []string{"embedContent"}},
		{Name: "models/aqa", Methods: []string{"generateAnswer"}},
	}
	if got := Pick(candidates); got != DefaultModel {
		t.Errorf("Pick = %q, want %q", got, DefaultModel)
	}
}

func TestVersionToken(t *testing.T) {
	cases := map[string]float64{
		"models/gemini-2.0-flash": 2.0,
		"models/gemini-1.5-pro":   1.5,
		"models/no-version":       0,
	}
	for name, want := range cases {
		if got := versionToken(name); got != want {
			t.Errorf("versionToken(%q) = %v, want %v", name, got, want)
		}
	}
}
