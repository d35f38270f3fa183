package quizgen

import (
	"context"

	"github.com/google/generative-ai-go/genai"
)

// Kind distinguishes the two question shapes.
type Kind string

const (
	KindChoice   Kind = "choice"
	KindFreeText Kind = "free_text"
)

// Mode constrains what kinds a generated batch may contain.
type Mode string

const (
	ModeFreeText Mode = "free_text"
	ModeChoice   Mode = "choice"
	ModeMixed    Mode = "mixed"
)

// Item is one quiz question. Immutable once built: the session queue owns
// it until it is graded and discarded.
type Item struct {
	Kind        Kind     `json:"kind"`
	Question    string   `json:"question"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Verdict is the three-level grading outcome.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictPartial   Verdict = "partial"
	VerdictIncorrect Verdict = "incorrect"
)

// Grade is what the session transitions on after a submit.
type Grade struct {
	Verdict      Verdict `json:"verdict"`
	ScorePercent int     `json:"score_percent"`
	Feedback     string  `json:"feedback"`
}

// Completer is the slice of the generation client this package needs.
// Tests substitute canned or failing stubs.
type Completer interface {
	Complete(ctx context.Context, model string, parts ...genai.Part) (string, error)
}
