package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge-backend/application/ports"
	pkgerrors "ideaforge-backend/pkg/errors"
)

const validResponse = `{
  "marketDemand": 8,
  "competitorAnalysis": "A handful of incumbents, none focused on this niche.",
  "techStackSuggestion": ["Go", "PostgreSQL"],
  "featureSuggestions": ["Onboarding", "Reporting"],
  "mrrProjection": {"min": 1000, "max": 9000},
  "effortEstimation": {"months": 3, "teamSize": 2}
}`

func newTestService(t *testing.T, providers ...Provider) *Service {
	t.Helper()
	if len(providers) == 0 {
		providers = []Provider{NewMockProvider(ProviderGemini)}
	}
	svc, err := NewService(providers, ProviderGemini, nil, nil)
	require.NoError(t, err)
	return svc
}

func analyzeWith(t *testing.T, response string) error {
	t.Helper()
	mock := NewMockProvider(ProviderGemini)
	mock.Response = response
	svc := newTestService(t, mock)

	_, err := svc.Analyze(context.Background(), ports.AnalysisRequest{
		Title:       "Test idea",
		Description: "A test idea",
	})
	return err
}

func TestServiceRequiresProviders(t *testing.T) {
	_, err := NewService(nil, "", nil, nil)
	assert.Error(t, err)
}

func TestServiceRejectsUnregisteredDefault(t *testing.T) {
	_, err := NewService([]Provider{NewMockProvider(ProviderOpenAI)}, ProviderGemini, nil, nil)
	assert.Error(t, err)
}

func TestAnalyzeRoutesToDefaultProvider(t *testing.T) {
	gemini := NewMockProvider(ProviderGemini)
	gemini.Response = validResponse
	openai := NewMockProvider(ProviderOpenAI)

	svc := newTestService(t, gemini, openai)

	analysis, err := svc.Analyze(context.Background(), ports.AnalysisRequest{
		Title:       "Budget tracker",
		Description: "Personal budgets with bank sync",
		Tags:        []string{"fintech"},
	})
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, analysis.Provider())
	assert.Equal(t, 8.0, analysis.MarketDemand())
	assert.NotEmpty(t, gemini.LastPrompt)
	assert.Empty(t, openai.LastPrompt)
	assert.Contains(t, gemini.LastPrompt, "Budget tracker")
	assert.Contains(t, gemini.LastPrompt, "fintech")
}

func TestAnalyzeRoutesToRequestedProvider(t *testing.T) {
	gemini := NewMockProvider(ProviderGemini)
	openai := NewMockProvider(ProviderOpenAI)
	openai.Response = validResponse

	svc := newTestService(t, gemini, openai)

	analysis, err := svc.Analyze(context.Background(), ports.AnalysisRequest{
		Title:       "Test idea",
		Description: "A test idea",
		Provider:    ProviderOpenAI,
	})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, analysis.Provider())
}

func TestAnalyzeRejectsUnknownProvider(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Analyze(context.Background(), ports.AnalysisRequest{
		Title:       "Test idea",
		Description: "A test idea",
		Provider:    "claude",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Analyze(context.Background(), ports.AnalysisRequest{Description: "no title"})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = svc.Analyze(context.Background(), ports.AnalysisRequest{Title: "no description"})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAnalyzeParsesFencedResponse(t *testing.T) {
	err := analyzeWith(t, "```json\n"+validResponse+"\n```")
	assert.NoError(t, err)
}

func TestAnalyzeParsesEmbeddedJSON(t *testing.T) {
	wrapped := "Here is my assessment of the idea:\n\n" + validResponse + "\n\nLet me know if you need more detail."
	err := analyzeWith(t, wrapped)
	assert.NoError(t, err)
}

func TestAnalyzeHandlesBracesInsideStrings(t *testing.T) {
	response := `{
  "marketDemand": 6,
  "competitorAnalysis": "Competitors use {placeholder} templating heavily.",
  "techStackSuggestion": ["Go"],
  "featureSuggestions": ["Templates"],
  "mrrProjection": {"min": 100, "max": 500},
  "effortEstimation": {"months": 1, "teamSize": 1}
}`
	err := analyzeWith(t, response)
	assert.NoError(t, err)
}

func TestAnalyzeNoJSONIsUnparsable(t *testing.T) {
	err := analyzeWith(t, "I'm sorry, I cannot analyze this idea.")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnparsableResponse(err))
	assert.False(t, pkgerrors.IsRetryable(err))
}

func TestAnalyzeTruncatedJSONIsUnparsable(t *testing.T) {
	err := analyzeWith(t, `{"marketDemand": 8, "competitorAnalysis": "cut off`)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnparsableResponse(err))
}

func TestAnalyzeSchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			name: "market demand out of range",
			response: `{"marketDemand": 15, "competitorAnalysis": "ok", "techStackSuggestion": ["Go"],
				"featureSuggestions": ["A"], "mrrProjection": {"min": 1, "max": 2},
				"effortEstimation": {"months": 1, "teamSize": 1}}`,
		},
		{
			name: "missing field",
			response: `{"marketDemand": 5, "techStackSuggestion": ["Go"],
				"featureSuggestions": ["A"], "mrrProjection": {"min": 1, "max": 2},
				"effortEstimation": {"months": 1, "teamSize": 1}}`,
		},
		{
			name: "fractional months",
			response: `{"marketDemand": 5, "competitorAnalysis": "ok", "techStackSuggestion": ["Go"],
				"featureSuggestions": ["A"], "mrrProjection": {"min": 1, "max": 2},
				"effortEstimation": {"months": 2.5, "teamSize": 1}}`,
		},
		{
			name: "inverted mrr range",
			response: `{"marketDemand": 5, "competitorAnalysis": "ok", "techStackSuggestion": ["Go"],
				"featureSuggestions": ["A"], "mrrProjection": {"min": 900, "max": 100},
				"effortEstimation": {"months": 1, "teamSize": 1}}`,
		},
		{
			name: "wrong field type",
			response: `{"marketDemand": "high", "competitorAnalysis": "ok", "techStackSuggestion": ["Go"],
				"featureSuggestions": ["A"], "mrrProjection": {"min": 1, "max": 2},
				"effortEstimation": {"months": 1, "teamSize": 1}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := analyzeWith(t, tt.response)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsInvalidAnalysisSchema(err), "expected schema error, got %v", err)
			assert.False(t, pkgerrors.IsRetryable(err))
		})
	}
}

func TestAnalyzeProviderErrorIsUnavailable(t *testing.T) {
	mock := NewMockProvider(ProviderGemini)
	mock.Err = assert.AnError
	svc := newTestService(t, mock)

	_, err := svc.Analyze(context.Background(), ports.AnalysisRequest{
		Title:       "Test idea",
		Description: "A test idea",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsProviderUnavailable(err))
	assert.True(t, pkgerrors.IsRetryable(err))
}

func TestAnalyzeTimeoutIsUnavailable(t *testing.T) {
	mock := NewMockProvider(ProviderGemini)
	mock.Err = context.DeadlineExceeded
	svc := newTestService(t, mock)

	_, err := svc.Analyze(context.Background(), ports.AnalysisRequest{
		Title:       "Test idea",
		Description: "A test idea",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsProviderUnavailable(err))
	assert.True(t, pkgerrors.IsRetryable(err))

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 502, appErr.HTTPStatus)
}

func TestProvidersSorted(t *testing.T) {
	svc := newTestService(t,
		NewMockProvider(ProviderOpenAI),
		NewMockProvider(ProviderGemini),
		NewMockProvider(ProviderGrok),
	)
	assert.Equal(t, []string{ProviderGemini, ProviderGrok, ProviderOpenAI}, svc.Providers())
}

func TestExtractJSONObject(t *testing.T) {
	got, ok := extractJSONObject(`prefix {"a": {"b": 1}} suffix`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	_, ok = extractJSONObject("no object here")
	assert.False(t, ok)

	_, ok = extractJSONObject(`{"never": "closed"`)
	assert.False(t, ok)
}
