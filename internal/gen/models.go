package gen

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/api/iterator"

	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

// DefaultModel is used when listing fails or nothing matches a preference.
const DefaultModel = "gemini-2.0-flash"

// Candidate is one entry from the model catalog.
type Candidate struct {
	Name    string
	Methods []string
}

// Model preference is expressed as ordered predicates, not string scanning
// scattered through call sites. First predicate with any match wins; ties
// break on the highest version token in the model name.
var modelPreferences = []func(Candidate) bool{
	func(c Candidate) bool { return strings.Contains(c.Name, "flash") && !strings.Contains(c.Name, "8b") },
	func(c Candidate) bool { return strings.Contains(c.Name, "flash") },
	func(c Candidate) bool { return strings.Contains(c.Name, "pro") },
}

// Pick selects a generation model from the catalog. Candidates that do not
// support generateContent are never considered.
func Pick(candidates []Candidate) string {
	var usable []Candidate
	for _, c := range candidates {
		if supportsGenerate(c) {
			usable = append(usable, c)
		}
	}

	for _, pref := range modelPreferences {
		best := ""
		bestVer := -1.0
		for _, c := range usable {
			if !pref(c) {
				continue
			}
			if v := versionToken(c.Name); v > bestVer {
				best, bestVer = c.Name, v
			}
		}
		if best != "" {
			return strings.TrimPrefix(best, "models/")
		}
	}
	return DefaultModel
}

func supportsGenerate(c Candidate) bool {
	for _, m := range c.Methods {
		if m == "generateContent" {
			return true
		}
	}
	return false
}

var rxVersion = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

func versionToken(name string) float64 {
	m := rxVersion.FindStringSubmatch(name)
	if len(m) < 2 {
		return 0
	}
	v, _ := strconv.ParseFloat(m[1], 64)
	return v
}

// PickModel lists the live catalog and applies the preference order.
// Any listing failure falls back to DefaultModel; picking is never fatal.
func (c *Client) PickModel(ctx context.Context) string {
	log := telemetry.L().With().Str("module", "gen").Logger()

	it := c.ai.ListModels(ctx)
	var candidates []Candidate
	for {
		m, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Warn().Err(err).Msg("model_list_failed")
			return DefaultModel
		}
		candidates = append(candidates, Candidate{Name: m.Name, Methods: m.SupportedGenerationMethods})
	}

	picked := Pick(candidates)
	log.Info().Str("model", picked).Int("catalog", len(candidates)).Msg("model_picked")
	return picked
}
