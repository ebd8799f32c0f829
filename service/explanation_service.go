package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"student-loan-sim/domain"
)

const defaultChatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// ExplanationService turns a run summary into a short plain-English
// explanation. Without an API key it always uses the built-in template.
type ExplanationService struct {
	apiKey     string
	apiURL     string
	model      string
	enabled    bool
	httpClient *http.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewExplanationService(apiKey, apiURL, model string) *ExplanationService {
	if apiURL == "" {
		apiURL = defaultChatCompletionsURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &ExplanationService{
		apiKey:  apiKey,
		apiURL:  apiURL,
		model:   model,
		enabled: apiKey != "",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Explain never fails: model errors fall back to the template.
func (s *ExplanationService) Explain(ctx context.Context, record domain.RunRecord) string {
	if !s.enabled {
		return FallbackExplanation(record)
	}

	sum := record.Summary
	prompt := fmt.Sprintf(`A borrower is deciding whether to repay a UK student loan early or invest the money instead.

SIMULATION (%d Monte Carlo paths over %d years):
- Outstanding loan: £%.0f, salary £%.0f, repayment threshold £%.0f at %.1f%%
- Mean total repayments if the loan is kept: £%.0f (median £%.0f)
- Mean value of investing the same amount: £%.0f (median £%.0f)
- Mean gain from paying early: £%.0f
- Recommendation: %s, winning in %.1f%% of paths

Explain this result in 3 sentences for a non-expert. Mention that any balance left after the term is written off.`,
		sum.Simulations, record.Parameters.PaybackYears,
		record.Parameters.CurrentLoan, record.Parameters.InitialSalary,
		record.Parameters.Threshold, record.Parameters.RepaymentRate*100,
		sum.Repayments.Mean, sum.Repayments.Median,
		sum.Investments.Mean, sum.Investments.Median,
		sum.Gains.Mean,
		recommendationText(sum.Recommendation), sum.RecommendedWinFraction*100)

	explanation, err := s.callLLM(ctx, prompt)
	if err != nil {
		slog.Warn("explanation model call failed, using template", "run_id", record.ID, "error", err)
		return FallbackExplanation(record)
	}
	return explanation
}

func (s *ExplanationService) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You explain personal finance simulations clearly and neutrally. You never give regulated financial advice.",
			},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 250,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("explanation API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("explanation API returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func recommendationText(r domain.Recommendation) string {
	if r == domain.RecommendPayEarly {
		return "pay off the loan early"
	}
	return "keep the loan and invest the money"
}

// FallbackExplanation is the template used when no model is configured.
func FallbackExplanation(record domain.RunRecord) string {
	sum := record.Summary
	if sum.Recommendation == domain.RecommendPayEarly {
		return fmt.Sprintf(
			"Across %d simulated futures you would repay £%.0f on average, more than the £%.0f the same money would grow to if invested. "+
				"Paying off the loan early comes out ahead by £%.0f on average and wins in %.1f%% of the simulations.",
			sum.Simulations, sum.Repayments.Mean, sum.Investments.Mean, sum.Gains.Mean, sum.RecommendedWinFraction*100)
	}
	return fmt.Sprintf(
		"Across %d simulated futures you would repay £%.0f on average before any remaining balance is written off, while investing would grow to £%.0f. "+
			"Keeping the loan and investing comes out ahead by £%.0f on average and wins in %.1f%% of the simulations.",
		sum.Simulations, sum.Repayments.Mean, sum.Investments.Mean, -sum.Gains.Mean, sum.RecommendedWinFraction*100)
}
