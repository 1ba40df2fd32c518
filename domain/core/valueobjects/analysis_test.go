package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "ideaforge-backend/pkg/errors"
)

func validAnalysisArgs() (float64, string, []string, []string, MRRProjection, EffortEstimation, string, time.Time) {
	return 7.5,
		"Crowded at the low end, thin at the enterprise tier.",
		[]string{"Go", "PostgreSQL"},
		[]string{"Billing", "Team workspaces"},
		MRRProjection{Min: 1000, Max: 8000},
		EffortEstimation{Months: 3, TeamSize: 2},
		"gemini",
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestNewAnalysis(t *testing.T) {
	demand, competitors, stack, features, mrr, effort, provider, at := validAnalysisArgs()

	analysis, err := NewAnalysis(demand, competitors, stack, features, mrr, effort, provider, at)
	require.NoError(t, err)

	assert.Equal(t, 7.5, analysis.MarketDemand())
	assert.Equal(t, competitors, analysis.CompetitorAnalysis())
	assert.Equal(t, stack, analysis.TechStackSuggestion())
	assert.Equal(t, features, analysis.FeatureSuggestions())
	assert.Equal(t, mrr, analysis.MRRProjection())
	assert.Equal(t, effort, analysis.EffortEstimation())
	assert.Equal(t, "gemini", analysis.Provider())
	assert.True(t, analysis.ValidatedAt().Equal(at))
}

func TestNewAnalysisRejectsInvalidFields(t *testing.T) {
	demand, competitors, stack, features, mrr, effort, provider, at := validAnalysisArgs()

	tests := []struct {
		name  string
		build func() (Analysis, error)
	}{
		{
			name: "market demand below range",
			build: func() (Analysis, error) {
				return NewAnalysis(0.5, competitors, stack, features, mrr, effort, provider, at)
			},
		},
		{
			name: "market demand above range",
			build: func() (Analysis, error) {
				return NewAnalysis(10.1, competitors, stack, features, mrr, effort, provider, at)
			},
		},
		{
			name: "blank competitor analysis",
			build: func() (Analysis, error) {
				return NewAnalysis(demand, "   ", stack, features, mrr, effort, provider, at)
			},
		},
		{
			name: "empty tech stack",
			build: func() (Analysis, error) {
				return NewAnalysis(demand, competitors, nil, features, mrr, effort, provider, at)
			},
		},
		{
			name: "empty feature suggestions",
			build: func() (Analysis, error) {
				return NewAnalysis(demand, competitors, stack, []string{}, mrr, effort, provider, at)
			},
		},
		{
			name: "negative mrr",
			build: func() (Analysis, error) {
				return NewAnalysis(demand, competitors, stack, features, MRRProjection{Min: -1, Max: 100}, effort, provider, at)
			},
		},
		{
			name: "inverted mrr range",
			build: func() (Analysis, error) {
				return NewAnalysis(demand, competitors, stack, features, MRRProjection{Min: 5000, Max: 1000}, effort, provider, at)
			},
		},
		{
			name: "zero months",
			build: func() (Analysis, error) {
				return NewAnalysis(demand, competitors, stack, features, mrr, EffortEstimation{Months: 0, TeamSize: 2}, provider, at)
			},
		},
		{
			name: "negative team size",
			build: func() (Analysis, error) {
				return NewAnalysis(demand, competitors, stack, features, mrr, EffortEstimation{Months: 3, TeamSize: -1}, provider, at)
			},
		},
		{
			name: "empty provider",
			build: func() (Analysis, error) {
				return NewAnalysis(demand, competitors, stack, features, mrr, effort, "", at)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err), "expected a validation error, got %v", err)
		})
	}
}

func TestNewAnalysisDefaultsValidatedAt(t *testing.T) {
	demand, competitors, stack, features, mrr, effort, provider, _ := validAnalysisArgs()

	analysis, err := NewAnalysis(demand, competitors, stack, features, mrr, effort, provider, time.Time{})
	require.NoError(t, err)
	assert.False(t, analysis.ValidatedAt().IsZero())
}

func TestAnalysisCopiesSlices(t *testing.T) {
	demand, competitors, _, features, mrr, effort, provider, at := validAnalysisArgs()

	stack := []string{"Go", "Redis"}
	analysis, err := NewAnalysis(demand, competitors, stack, features, mrr, effort, provider, at)
	require.NoError(t, err)

	stack[0] = "mutated"
	assert.Equal(t, "Go", analysis.TechStackSuggestion()[0])

	got := analysis.TechStackSuggestion()
	got[1] = "also mutated"
	assert.Equal(t, "Redis", analysis.TechStackSuggestion()[1])
}

func TestAnalysisEquals(t *testing.T) {
	demand, competitors, stack, features, mrr, effort, provider, at := validAnalysisArgs()

	a, err := NewAnalysis(demand, competitors, stack, features, mrr, effort, provider, at)
	require.NoError(t, err)
	b, err := NewAnalysis(demand, competitors, stack, features, mrr, effort, provider, at)
	require.NoError(t, err)

	assert.True(t, a.Equals(b))

	c, err := NewAnalysis(demand, competitors, stack, features, mrr, effort, "openai", at)
	require.NoError(t, err)
	assert.False(t, a.Equals(c))
}
