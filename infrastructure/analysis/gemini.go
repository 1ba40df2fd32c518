package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	pkgerrors "ideaforge-backend/pkg/errors"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-1.5-flash-latest"
)

// GeminiProvider calls the Google Generative Language API
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// GeminiOption configures a GeminiProvider
type GeminiOption func(*GeminiProvider)

// WithGeminiModel overrides the default model
func WithGeminiModel(model string) GeminiOption {
	return func(p *GeminiProvider) {
		p.model = model
	}
}

// WithGeminiBaseURL overrides the API endpoint, used in tests
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(p *GeminiProvider) {
		p.baseURL = baseURL
	}
}

// WithGeminiHTTPClient overrides the HTTP client
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(p *GeminiProvider) {
		p.httpClient = client
	}
}

// NewGeminiProvider creates a Gemini provider. An empty API key produces
// a provider that reports itself unavailable.
func NewGeminiProvider(apiKey string, opts ...GeminiOption) *GeminiProvider {
	p := &GeminiProvider{
		apiKey:  apiKey,
		model:   defaultGeminiModel,
		baseURL: defaultGeminiBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider's registry name
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// IsAvailable reports whether an API key is configured
func (p *GeminiProvider) IsAvailable() bool {
	return p.apiKey != ""
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt to the generateContent endpoint and returns
// the first candidate's text
func (p *GeminiProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if !p.IsAvailable() {
		return "", pkgerrors.NewProviderUnavailableError(ProviderGemini, fmt.Errorf("gemini API key not configured"))
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to encode gemini request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to build gemini request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.NewProviderUnavailableError(ProviderGemini, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", pkgerrors.NewProviderUnavailableError(ProviderGemini,
			fmt.Errorf("gemini API returned status %d", resp.StatusCode))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", pkgerrors.NewProviderUnavailableError(ProviderGemini, err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", pkgerrors.NewUnparsableResponseError(ProviderGemini)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", pkgerrors.NewUnparsableResponseError(ProviderGemini)
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
