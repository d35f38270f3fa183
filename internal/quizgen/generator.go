package quizgen

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/oserockets-max/soken-quiz/internal/extract"
	"github.com/oserockets-max/soken-quiz/internal/gen"
	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

// Generator turns one registered document into validated quiz items.
// Batching amortizes model calls; the single-item fallback bounds the worst
// case to "ask again", never a crash.
type Generator struct {
	client       Completer
	model        string
	batchSize    int
	historyLimit int
}

func NewGenerator(client Completer, model string, batchSize, historyLimit int) *Generator {
	if batchSize <= 0 {
		batchSize = 3
	}
	if historyLimit <= 0 {
		historyLimit = 30
	}
	return &Generator{client: client, model: model, batchSize: batchSize, historyLimit: historyLimit}
}

// GenerateBatch requests a batch of items for the document under the given
// mode, avoiding questions already in history. It returns the valid subset,
// possibly empty. All generation and parse failures degrade to fewer items;
// history is never mutated here.
func (g *Generator) GenerateBatch(ctx context.Context, doc gen.Handle, mode Mode, history []string) []Item {
	log := telemetry.L().With().Str("model", g.model).Str("mode", string(mode)).Logger()

	prompt := batchPrompt(g.batchSize, mode, history, g.historyLimit)
	text, err := g.client.Complete(ctx, g.model, doc.Part(), genai.Text(prompt))
	if err != nil {
		log.Warn().Err(err).Msg("batch_generate_failed")
	} else if items := coerceItems(extract.Slice(extract.Structured(text))); len(items) > 0 {
		log.Info().Int("items", len(items)).Msg("batch_generate_ok")
		return items
	} else {
		log.Warn().Int("chars", len(text)).Msg("batch_generate_unparsable")
	}

	// fallback: one item, object accepted as well as a 1-element array
	text, err = g.client.Complete(ctx, g.model, doc.Part(), genai.Text(singlePrompt(mode, history, g.historyLimit)))
	if err != nil {
		log.Warn().Err(err).Msg("single_generate_failed")
		return nil
	}

	v := extract.Structured(text)
	var raw []any
	if m := extract.Map(v); m != nil {
		raw = []any{v}
	} else {
		raw = extract.Slice(v)
	}
	items := coerceItems(raw)
	if len(items) == 0 {
		log.Warn().Msg("single_generate_unparsable")
		return nil
	}
	log.Info().Msg("single_generate_ok")
	return items[:1]
}

func coerceItems(raw []any) []Item {
	var items []Item
	for _, r := range raw {
		m := extract.Map(r)
		if m == nil {
			continue
		}
		if item, ok := coerceItem(m); ok {
			items = append(items, item)
		}
	}
	return items
}

// coerceItem validates the required fields and normalizes the kind token.
// Choice items additionally need a non-empty option list.
func coerceItem(m map[string]any) (Item, bool) {
	kind, ok := normalizeKind(extract.String(m, "type"))
	if !ok {
		return Item{}, false
	}

	item := Item{
		Kind:        kind,
		Question:    strings.TrimSpace(extract.String(m, "question")),
		Options:     extract.Strings(m, "options"),
		Answer:      strings.TrimSpace(extract.String(m, "answer")),
		Explanation: strings.TrimSpace(extract.String(m, "explanation")),
	}
	if item.Question == "" || item.Answer == "" {
		return Item{}, false
	}
	if kind == KindChoice && len(item.Options) == 0 {
		return Item{}, false
	}
	if kind == KindFreeText {
		item.Options = nil
	}
	return item, true
}

func normalizeKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return "", false
	case strings.Contains(s, "choice"):
		return KindChoice, true
	case strings.Contains(s, "free") || strings.Contains(s, "text") || strings.Contains(s, "open"):
		return KindFreeText, true
	}
	return "", false
}
