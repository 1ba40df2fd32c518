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
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"

	defaultGrokBaseURL = "https://api.x.ai/v1"
	defaultGrokModel   = "grok-2-latest"
)

// OpenAICompatProvider calls any chat-completions API that speaks the
// OpenAI wire format. Both the OpenAI and Grok backends go through this
// client with different base URLs and models.
type OpenAICompatProvider struct {
	name       string
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider for the OpenAI API
func NewOpenAIProvider(apiKey string) *OpenAICompatProvider {
	return &OpenAICompatProvider{
		name:    ProviderOpenAI,
		apiKey:  apiKey,
		model:   defaultOpenAIModel,
		baseURL: defaultOpenAIBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewGrokProvider creates a provider for the xAI Grok API
func NewGrokProvider(apiKey string) *OpenAICompatProvider {
	return &OpenAICompatProvider{
		name:    ProviderGrok,
		apiKey:  apiKey,
		model:   defaultGrokModel,
		baseURL: defaultGrokBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewOpenAICompatProvider creates a provider with explicit settings,
// used in tests against a stub server
func NewOpenAICompatProvider(name, apiKey, model, baseURL string, client *http.Client) *OpenAICompatProvider {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &OpenAICompatProvider{
		name:       name,
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Name returns the provider's registry name
func (p *OpenAICompatProvider) Name() string {
	return p.name
}

// IsAvailable reports whether an API key is configured
func (p *OpenAICompatProvider) IsAvailable() bool {
	return p.apiKey != ""
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt as a single user message and returns the
// first choice's content
func (p *OpenAICompatProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if !p.IsAvailable() {
		return "", pkgerrors.NewProviderUnavailableError(p.name, fmt.Errorf("%s API key not configured", p.name))
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: options.Temperature,
		MaxTokens:   options.MaxOutputTokens,
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to encode completion request")
	}

	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to build completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.NewProviderUnavailableError(p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", pkgerrors.NewProviderUnavailableError(p.name,
			fmt.Errorf("%s API returned status %d", p.name, resp.StatusCode))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", pkgerrors.NewProviderUnavailableError(p.name, err)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", pkgerrors.NewUnparsableResponseError(p.name)
	}

	if len(parsed.Choices) == 0 {
		return "", pkgerrors.NewUnparsableResponseError(p.name)
	}

	return parsed.Choices[0].Message.Content, nil
}
