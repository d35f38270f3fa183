package quizgen_test

import (
	"context"
	"testing"

	"github.com/oserockets-max/soken-quiz/internal/quizgen"
)

func TestGradeCorrect(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{"result":"〇","score_percent":100,"feedback":"ok"}`}}
	g := quizgen.NewGrader(stub, "test-model")

	grade := g.Grade(context.Background(), "q", "ref", "user answer")
	want := quizgen.Grade{Verdict: quizgen.VerdictCorrect, ScorePercent: 100, Feedback: "ok"}
	if grade != want {
		t.Fatalf("grade = %+v, want %+v", grade, want)
	}
}

func TestGradePartialWithFence(t *testing.T) {
	stub := &stubCompleter{responses: []string{"```json\n{\"result\":\"△\",\"score_percent\":60,\"feedback\":\"close\"}\n```"}}
	g := quizgen.NewGrader(stub, "test-model")

	grade := g.Grade(context.Background(), "q", "ref", "almost")
	if grade.Verdict != quizgen.VerdictPartial || grade.ScorePercent != 60 || grade.Feedback != "close" {
		t.Fatalf("grade = %+v", grade)
	}
}

func TestGradeDefaults(t *testing.T) {
	want := quizgen.Grade{Verdict: quizgen.VerdictIncorrect, ScorePercent: 0, Feedback: "grading failed"}

	cases := map[string]*stubCompleter{
		"service failure":    {fail: true},
		"unparsable text":    {responses: []string{"the student did well I think"}},
		"no verdict field":   {responses: []string{`{"score_percent": 90, "feedback": "great"}`}},
		"unknown verdict":    {responses: []string{`{"result": "maybe", "score_percent": 50}`}},
		"array not object":   {responses: []string{`[{"result": "〇"}]`}},
	}
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			g := quizgen.NewGrader(stub, "test-model")
			if grade := g.Grade(context.Background(), "q", "ref", "ans"); grade != want {
				t.Errorf("grade = %+v, want %+v", grade, want)
			}
		})
	}
}

func TestGradeClampsPercent(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{"result":"✕","score_percent":-20,"feedback":"no"}`}}
	g := quizgen.NewGrader(stub, "test-model")
	if grade := g.Grade(context.Background(), "q", "ref", "ans"); grade.ScorePercent != 0 {
		t.Errorf("percent not clamped: %+v", grade)
	}

	stub = &stubCompleter{responses: []string{`{"result":"〇","score_percent":150}`}}
	g = quizgen.NewGrader(stub, "test-model")
	if grade := g.Grade(context.Background(), "q", "ref", "ans"); grade.ScorePercent != 100 {
		t.Errorf("percent not clamped: %+v", grade)
	}
}

func TestGradeChoice(t *testing.T) {
	grade := quizgen.GradeChoice("A", "A")
	if grade.Verdict != quizgen.VerdictCorrect || grade.ScorePercent != 100 {
		t.Fatalf("grade = %+v", grade)
	}

	grade = quizgen.GradeChoice("B", "A")
	if grade.Verdict != quizgen.VerdictIncorrect || grade.ScorePercent != 0 {
		t.Fatalf("grade = %+v", grade)
	}
	// the choice path can never produce a partial verdict
	if grade.Verdict == quizgen.VerdictPartial {
		t.Fatal("partial verdict reachable via choice grading")
	}
}
