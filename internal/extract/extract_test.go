package extract_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/oserockets-max/soken-quiz/internal/extract"
)

func roundTrip(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var want any
	if err := json.Unmarshal(b, &want); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return want
}

func TestStructuredPlainJSON(t *testing.T) {
	cases := []any{
		map[string]any{"question": "What is Go?", "answer": "a language"},
		[]any{map[string]any{"type": "choice"}, map[string]any{"type": "free_text"}},
		map[string]any{"score_percent": 72.5, "nested": map[string]any{"ok": true}},
	}
	for _, v := range cases {
		want := roundTrip(t, v)
		b, _ := json.Marshal(v)
		got := extract.Structured(string(b))
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Structured(%s) = %#v, want %#v", b, got, want)
		}
	}
}

func TestStructuredCodeFence(t *testing.T) {
	v := map[string]any{"result": "〇", "score_percent": float64(100), "feedback": "ok"}
	b, _ := json.Marshal(v)

	for _, wrap := range []string{
		"```json\n" + string(b) + "\n```",
		"```\n" + string(b) + "\n```",
	} {
		got := extract.Structured(wrap)
		if !reflect.DeepEqual(got, roundTrip(t, v)) {
			t.Errorf("Structured(%q) = %#v, want %#v", wrap, got, v)
		}
	}
}

func TestStructuredEmbeddedFragment(t *testing.T) {
	text := "Sure! Here are your questions:\n[{\"question\": \"q1\"},\n {\"question\": \"q2\"}]\nHope that helps."
	got := extract.Slice(extract.Structured(text))
	if len(got) != 2 {
		t.Fatalf("expected 2 elements, got %#v", got)
	}

	text = "The grade is {\"result\": \"△\",\n\"score_percent\": 50} as computed."
	m := extract.Map(extract.Structured(text))
	if m == nil || m["result"] != "△" {
		t.Fatalf("expected object with result, got %#v", m)
	}
}

func TestStructuredGarbage(t *testing.T) {
	for _, s := range []string{"garbage", "", "```json\nnot json\n```", "{broken", "[1, 2"} {
		got := extract.Structured(s)
		m, ok := got.(map[string]any)
		if !ok || len(m) != 0 {
			t.Errorf("Structured(%q) = %#v, want empty map", s, got)
		}
	}
}

func TestCoercions(t *testing.T) {
	m := map[string]any{
		"question": "q",
		"count":    float64(3),
		"ratio":    1.5,
		"flag":     true,
		"options":  []any{"A", "B"},
		"pct":      "85",
	}
	if got := extract.String(m, "question"); got != "q" {
		t.Errorf("String question = %q", got)
	}
	if got := extract.String(m, "count"); got != "3" {
		t.Errorf("String count = %q", got)
	}
	if got := extract.String(m, "ratio"); got != "1.5" {
		t.Errorf("String ratio = %q", got)
	}
	if got := extract.String(m, "flag"); got != "true" {
		t.Errorf("String flag = %q", got)
	}
	if got := extract.String(m, "missing"); got != "" {
		t.Errorf("String missing = %q", got)
	}
	if got := extract.Strings(m, "options"); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Strings options = %#v", got)
	}
	if got := extract.Number(m, "pct"); got != 85 {
		t.Errorf("Number pct = %v", got)
	}
	if got := extract.Number(m, "ratio"); got != 1.5 {
		t.Errorf("Number ratio = %v", got)
	}
}
