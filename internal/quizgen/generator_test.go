package quizgen_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/oserockets-max/soken-quiz/internal/gen"
	"github.com/oserockets-max/soken-quiz/internal/quizgen"
)

// stubCompleter replays canned responses in order; a nil entry means the
// call fails.
type stubCompleter struct {
	responses []string
	fail      bool
	calls     int
	prompts   []string
}

func (s *stubCompleter) Complete(_ context.Context, _ string, parts ...genai.Part) (string, error) {
	s.calls++
	for _, p := range parts {
		if t, ok := p.(genai.Text); ok {
			s.prompts = append(s.prompts, string(t))
		}
	}
	if s.fail || s.calls > len(s.responses) {
		return "", errors.New("stub: service down")
	}
	return s.responses[s.calls-1], nil
}

var testDoc = gen.Handle{Name: "files/abc", URI: "https://example.com/files/abc", MIME: "application/pdf"}

const batchJSON = `[
  {"type": "choice", "question": "Capital of Japan?", "options": ["Tokyo", "Osaka", "Kyoto", "Nagoya"], "answer": "Tokyo", "explanation": "Tokyo is the capital."},
  {"type": "free_text", "question": "Explain photosynthesis.", "answer": "Plants convert light into chemical energy.", "explanation": "Light reactions and the Calvin cycle."},
  {"type": "choice", "question": "2+2?", "options": ["3", "4", "5", "6"], "answer": "4", "explanation": "Basic arithmetic."}
]`

func TestGenerateBatch(t *testing.T) {
	stub := &stubCompleter{responses: []string{batchJSON}}
	g := quizgen.NewGenerator(stub, "test-model", 3, 30)

	items := g.GenerateBatch(context.Background(), testDoc, quizgen.ModeMixed, nil)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Kind != quizgen.KindChoice || len(items[0].Options) != 4 {
		t.Errorf("first item not coerced as choice: %+v", items[0])
	}
	if items[1].Kind != quizgen.KindFreeText || items[1].Options != nil {
		t.Errorf("second item not coerced as free text: %+v", items[1])
	}
	if stub.calls != 1 {
		t.Errorf("expected 1 call, got %d", stub.calls)
	}
}

func TestGenerateBatchFiltersInvalid(t *testing.T) {
	// missing answer, missing options on a choice item, unknown type
	raw := `[
	  {"type": "choice", "question": "q1", "options": ["A", "B"], "answer": "A"},
	  {"type": "choice", "question": "q2", "answer": "A"},
	  {"type": "free_text", "question": "q3"},
	  {"type": "essay-ish", "question": "q4", "answer": "a"},
	  {"type": "free_text", "question": "q5", "answer": "a5"}
	]`
	stub := &stubCompleter{responses: []string{raw}}
	g := quizgen.NewGenerator(stub, "test-model", 3, 30)

	items := g.GenerateBatch(context.Background(), testDoc, quizgen.ModeMixed, nil)
	if len(items) != 2 {
		t.Fatalf("expected 2 valid items, got %d: %+v", len(items), items)
	}
	if items[0].Question != "q1" || items[1].Question != "q5" {
		t.Errorf("wrong items survived: %+v", items)
	}
}

func TestGenerateBatchSingleFallback(t *testing.T) {
	single := `{"type": "free_text", "question": "Only one?", "answer": "yes", "explanation": "fallback"}`
	stub := &stubCompleter{responses: []string{"no json here at all", single}}
	g := quizgen.NewGenerator(stub, "test-model", 3, 30)

	items := g.GenerateBatch(context.Background(), testDoc, quizgen.ModeFreeText, nil)
	if len(items) != 1 {
		t.Fatalf("expected 1 fallback item, got %d", len(items))
	}
	if items[0].Question != "Only one?" {
		t.Errorf("unexpected item: %+v", items[0])
	}
	if stub.calls != 2 {
		t.Errorf("expected batch + fallback calls, got %d", stub.calls)
	}
}

func TestGenerateBatchAllFailures(t *testing.T) {
	stub := &stubCompleter{fail: true}
	g := quizgen.NewGenerator(stub, "test-model", 3, 30)

	history := []string{"old question"}
	items := g.GenerateBatch(context.Background(), testDoc, quizgen.ModeMixed, history)
	if items != nil {
		t.Fatalf("expected no items, got %+v", items)
	}
	if len(history) != 1 || history[0] != "old question" {
		t.Errorf("history mutated: %+v", history)
	}
	if stub.calls != 2 {
		t.Errorf("expected batch + fallback attempts, got %d", stub.calls)
	}
}

func TestPromptCarriesModeAndHistory(t *testing.T) {
	stub := &stubCompleter{responses: []string{batchJSON}}
	g := quizgen.NewGenerator(stub, "test-model", 3, 2)

	history := []string{"h1", "h2", "h3"}
	g.GenerateBatch(context.Background(), testDoc, quizgen.ModeChoice, history)

	if len(stub.prompts) == 0 {
		t.Fatal("no prompt captured")
	}
	p := stub.prompts[0]
	if !strings.Contains(p, "multiple choice") {
		t.Errorf("mode clause missing from prompt:\n%s", p)
	}
	// only the most recent entries within the limit appear
	if strings.Contains(p, "h1") || !strings.Contains(p, "h2") || !strings.Contains(p, "h3") {
		t.Errorf("history clause wrong:\n%s", p)
	}
}
