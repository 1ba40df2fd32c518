package analysis

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider provides a deterministic implementation for testing and
// local development. Responses can be overridden per test.
type MockProvider struct {
	name      string
	available bool

	// Response, when set, is returned verbatim from Complete
	Response string

	// Err, when set, is returned from Complete
	Err error

	// LastPrompt records the most recent prompt for assertions
	LastPrompt string
}

// NewMockProvider creates a new mock provider registered under the
// given name
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name:      name,
		available: true,
	}
}

// Name returns the provider's registry name
func (m *MockProvider) Name() string {
	return m.name
}

// IsAvailable returns whether the mock provider is available
func (m *MockProvider) IsAvailable() bool {
	return m.available
}

// SetAvailable controls whether the mock provider is available
func (m *MockProvider) SetAvailable(available bool) {
	m.available = available
}

// Complete returns the configured response, or a plausible assessment
// derived from the prompt when none is set
func (m *MockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}

	m.LastPrompt = prompt

	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}

	return m.generateAssessment(prompt), nil
}

// generateAssessment builds a schema-complete response, scoring higher
// for prompts that look like developer tooling
func (m *MockProvider) generateAssessment(prompt string) string {
	lower := strings.ToLower(prompt)

	demand := 6
	if strings.Contains(lower, "developer") || strings.Contains(lower, "api") ||
		strings.Contains(lower, "automation") {
		demand = 8
	}

	return fmt.Sprintf(`{
  "marketDemand": %d,
  "competitorAnalysis": "Several established players exist in this space, but differentiation through focus on an underserved niche remains possible.",
  "techStackSuggestion": ["Go", "PostgreSQL", "React"],
  "featureSuggestions": ["User onboarding flow", "Usage analytics dashboard", "Team collaboration"],
  "mrrProjection": {
    "min": 2000,
    "max": 15000
  },
  "effortEstimation": {
    "months": 4,
    "teamSize": 2
  }
}`, demand)
}
