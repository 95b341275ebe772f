package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"medlens/internal/analyzer"
	"medlens/internal/config"
	"medlens/internal/domain"
	"medlens/internal/port"
)

const (
	providerName = "gemini"
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Analyzer implements port.DocumentAnalyzer using Google's Gemini API.
type Analyzer struct {
	apiKey     string
	model      string
	endpoint   string
	client     *http.Client
	benchmarks *analyzer.Benchmarks
	log        zerolog.Logger
}

// NewAnalyzer creates a Gemini-based document analyzer.
func NewAnalyzer(cfg *config.AnalyzerConfig, benchmarks *analyzer.Benchmarks, log zerolog.Logger) *Analyzer {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	if benchmarks == nil {
		benchmarks = analyzer.DefaultBenchmarks()
	}
	return &Analyzer{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: timeout},
		benchmarks: benchmarks,
		log:        log.With().Str("component", "gemini").Logger(),
	}
}

// Factory adapts NewAnalyzer to analyzer.ProviderFactory.
func Factory(cfg *config.AnalyzerConfig, benchmarks *analyzer.Benchmarks, log zerolog.Logger) (port.DocumentAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini analyzer requires an API key")
	}
	return NewAnalyzer(cfg, benchmarks, log), nil
}

func (a *Analyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*domain.MedicalAnalysis, error) {
	if input.Document == nil {
		return nil, domain.ErrNoDocument
	}
	prompt := analyzer.BuildAnalysisPrompt(input.CityTier, a.benchmarks)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"inline_data": map[string]interface{}{
							"mime_type": input.Document.MimeType,
							"data":      input.Document.Base64Payload,
						},
					},
					{
						"text": prompt,
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"responseSchema":   analyzer.ResponseSchema(),
			"maxOutputTokens":  16384,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.apiKey)

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &analyzer.TransportError{Provider: providerName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &analyzer.TransportError{Provider: providerName, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	a.log.Debug().
		Str("model", a.model).
		Str("mime_type", input.Document.MimeType).
		Str("city_tier", string(input.CityTier)).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("generateContent returned")

	if resp.StatusCode == http.StatusTooManyRequests {
		te := &analyzer.TransportError{Provider: providerName, StatusCode: resp.StatusCode, Err: errors.New(truncate(string(respBody), 500))}
		return nil, analyzer.NewRateLimitError(te, analyzer.ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &analyzer.TransportError{Provider: providerName, StatusCode: resp.StatusCode, Err: errors.New(truncate(string(respBody), 500))}
	}

	return parseResponse(respBody)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func parseResponse(body []byte) (*domain.MedicalAnalysis, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &analyzer.TransportError{Provider: providerName, StatusCode: http.StatusOK, Err: fmt.Errorf("unmarshaling response: %w", err)}
	}

	if resp.PromptFeedback.BlockReason != "" {
		return nil, &analyzer.EmptyResponseError{Provider: providerName, Reason: "prompt blocked: " + resp.PromptFeedback.BlockReason}
	}
	if len(resp.Candidates) == 0 {
		return nil, &analyzer.EmptyResponseError{Provider: providerName, Reason: "no candidates"}
	}
	candidate := resp.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return nil, &analyzer.EmptyResponseError{Provider: providerName, Reason: "no parts (finish reason " + candidate.FinishReason + ")"}
	}

	var text string
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	if text == "" {
		return nil, &analyzer.EmptyResponseError{Provider: providerName, Reason: "empty text"}
	}

	return analyzer.DecodeAnalysis(text)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
