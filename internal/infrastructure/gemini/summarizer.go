/*
Package gemini renders human-readable prose for already-screened results via
the Gemini API. It is a downstream consumer only: the screening verdicts are
final before this package ever sees them, and a summarization failure never
affects the screening outcome.
*/
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shelfsafe/backend/internal/domain"
	"google.golang.org/genai"
)

// Summarizer generates a natural-language summary of screened results
type Summarizer struct {
	apiKey string
	model  string
}

// NewSummarizer creates a Gemini-backed summarizer
func NewSummarizer(apiKey, model string) *Summarizer {
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &Summarizer{
		apiKey: apiKey,
		model:  model,
	}
}

// Summarize renders the screened results as prose following the output
// template. Errors wrap ErrSummaryUnavailable so callers can fall back to a
// plain message.
func (s *Summarizer) Summarize(ctx context.Context, req *domain.SearchRequest, results []domain.CategoryResult) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("%w: gemini API key not configured", domain.ErrSummaryUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSummaryUnavailable, err)
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSummaryUnavailable, err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildUserPrompt(req)}},
		},
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: "Format:\n" + outputFormat}},
		},
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: "Screened items (machine): " + string(resultsJSON)}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSummaryUnavailable, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty model response", domain.ErrSummaryUnavailable)
	}

	return text, nil
}
