package quizgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/oserockets-max/soken-quiz/internal/extract"
	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

// failedGrade is the safety net: the session always gets a well-formed
// result to transition on, counted as a normal incorrect answer.
var failedGrade = Grade{Verdict: VerdictIncorrect, ScorePercent: 0, Feedback: "grading failed"}

// Grader judges free-text answers with the model. Choice answers never
// reach it; see GradeChoice.
type Grader struct {
	client Completer
	model  string
}

func NewGrader(client Completer, model string) *Grader {
	return &Grader{client: client, model: model}
}

// Grade asks the model for a 〇/△/✕ verdict on a free-text answer.
// Any failure along the way, transport or parse, yields failedGrade.
func (g *Grader) Grade(ctx context.Context, question, reference, userAnswer string) Grade {
	log := telemetry.L().With().Str("model", g.model).Logger()

	text, err := g.client.Complete(ctx, g.model, genai.Text(gradingPrompt(question, reference, userAnswer)))
	if err != nil {
		log.Warn().Err(err).Msg("grade_failed")
		return failedGrade
	}

	m := extract.Map(extract.Structured(text))
	if m == nil {
		log.Warn().Msg("grade_unparsable")
		return failedGrade
	}

	verdict, ok := parseVerdict(extract.String(m, "result"))
	if !ok {
		log.Warn().Msg("grade_no_verdict")
		return failedGrade
	}

	return Grade{
		Verdict:      verdict,
		ScorePercent: clampPercent(int(extract.Number(m, "score_percent"))),
		Feedback:     strings.TrimSpace(extract.String(m, "feedback")),
	}
}

// GradeChoice compares the selected option against the reference answer.
// Exact equality only; the partial verdict is unreachable on this path.
func GradeChoice(selected, reference string) Grade {
	if selected == reference {
		return Grade{Verdict: VerdictCorrect, ScorePercent: 100, Feedback: "correct"}
	}
	return Grade{
		Verdict:      VerdictIncorrect,
		ScorePercent: 0,
		Feedback:     fmt.Sprintf("the correct answer was: %s", reference),
	}
}

func parseVerdict(s string) (Verdict, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "〇", "○", "◯", "o", "correct", "まる":
		return VerdictCorrect, true
	case "△", "partial", "partially correct", "さんかく":
		return VerdictPartial, true
	case "✕", "×", "x", "incorrect", "wrong", "ばつ":
		return VerdictIncorrect, true
	}
	return "", false
}

func clampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
