package quizgen

import (
	"fmt"
	"strings"
)

// instruction shared by batch and single generation: JSON only, fixed keys.
const itemSchemaInstruction = `Each question is a JSON object with keys:
"type": "choice" for 4-option multiple choice, "free_text" for free response,
"question": string,
"options": array of exactly 4 strings (choice questions only),
"answer": string (for choice questions, must equal one of the options verbatim),
"explanation": string, a short explanation of the answer.
Return ONLY JSON. No Markdown, no code fences, no extra text.`

func modeClause(mode Mode) string {
	switch mode {
	case ModeFreeText:
		return "All questions must be free-response (type \"free_text\")."
	case ModeChoice:
		return "All questions must be 4-option multiple choice (type \"choice\")."
	default:
		return "Produce a mix of multiple-choice and free-response questions."
	}
}

func historyClause(history []string, limit int) string {
	if len(history) == 0 {
		return ""
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	var b strings.Builder
	b.WriteString("Do NOT repeat or rephrase any of these previously asked questions:\n")
	for _, q := range history {
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteByte('\n')
	}
	return b.String()
}

func batchPrompt(n int, mode Mode, history []string, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create exactly %d quiz questions from the attached document, as a JSON array.\n", n)
	b.WriteString(modeClause(mode))
	b.WriteByte('\n')
	if h := historyClause(history, limit); h != "" {
		b.WriteString(h)
	}
	b.WriteByte('\n')
	b.WriteString(itemSchemaInstruction)
	return b.String()
}

func singlePrompt(mode Mode, history []string, limit int) string {
	var b strings.Builder
	b.WriteString("Create ONE quiz question from the attached document, as a single JSON object.\n")
	b.WriteString(modeClause(mode))
	b.WriteByte('\n')
	if h := historyClause(history, limit); h != "" {
		b.WriteString(h)
	}
	b.WriteByte('\n')
	b.WriteString(itemSchemaInstruction)
	return b.String()
}

func gradingPrompt(question, reference, userAnswer string) string {
	var b strings.Builder
	b.WriteString("You are grading a quiz answer. Judge it using your general knowledge in addition to the reference answer; accept different wording that means the same thing.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Reference answer: %s\n", reference)
	fmt.Fprintf(&b, "Student answer: %s\n\n", userAnswer)
	b.WriteString(`Return ONLY a JSON object with keys:
"result": "〇" if correct, "△" if partially correct, "✕" if incorrect,
"score_percent": number from 0 to 100,
"feedback": one or two short sentences for the student.
No Markdown, no code fences, no extra text.`)
	return b.String()
}
