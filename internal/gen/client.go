package gen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

// Failure kinds. Callers never see a raw transport error: everything the
// service throws is folded into one of these so the quiz pipeline can
// degrade instead of crash.
var (
	ErrUnavailable   = errors.New("generation service unavailable")
	ErrBlocked       = errors.New("generation blocked by service")
	ErrEmptyResponse = errors.New("generation returned no text")
)

// Client wraps the Gemini API for text completion over document + prompt
// parts. Safety filtering is set to the most permissive threshold for every
// harm category: quiz content is pedagogical and must not be silently
// dropped by the filter.
type Client struct {
	ai      *genai.Client
	limiter *rate.Limiter
}

func NewClient(ctx context.Context, apiKey string, rps, burst int) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 2
	}
	ai, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{
		ai:      ai,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

func (c *Client) Close() error { return c.ai.Close() }

var permissiveSafety = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
}

// Complete runs one generation call and returns the concatenated text parts.
// JSON output is requested but not trusted; run the result through
// extract.Structured. Any error returned here is one of the failure kinds
// above (possibly wrapped).
func (c *Client) Complete(ctx context.Context, model string, parts ...genai.Part) (string, error) {
	log := telemetry.L().With().Str("model", model).Logger()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	m := c.ai.GenerativeModel(model)
	m.SafetySettings = permissiveSafety
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.7)

	start := time.Now()
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		log.Error().Err(err).Msg("generate_failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		log.Warn().Str("reason", resp.PromptFeedback.BlockReason.String()).Msg("generate_blocked")
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		log.Warn().Msg("generate_empty")
		return "", ErrEmptyResponse
	}

	log.Debug().Int("latency_ms", int(time.Since(start)/time.Millisecond)).Int("chars", len(text)).Msg("generate_ok")
	return text, nil
}
