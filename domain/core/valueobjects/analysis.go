package valueobjects

import (
	"fmt"
	"strings"
	"time"

	"ideaforge-backend/domain/config"
	pkgerrors "ideaforge-backend/pkg/errors"
)

// MRRProjection is the projected monthly recurring revenue range
type MRRProjection struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EffortEstimation is the estimated implementation effort
type EffortEstimation struct {
	Months   int `json:"months"`
	TeamSize int `json:"teamSize"`
}

// Analysis is a value object holding the structured result of one
// validation pass over an idea. An Analysis is always fully valid:
// construction rejects any out-of-range or inconsistent field, so a
// partially valid analysis can never be persisted.
type Analysis struct {
	marketDemand       float64
	competitorAnalysis string
	techStackSuggestion []string
	featureSuggestions  []string
	mrrProjection      MRRProjection
	effortEstimation   EffortEstimation
	provider           string
	validatedAt        time.Time
}

// NewAnalysis creates an Analysis with full schema validation using the
// default domain configuration.
func NewAnalysis(
	marketDemand float64,
	competitorAnalysis string,
	techStack []string,
	features []string,
	mrr MRRProjection,
	effort EffortEstimation,
	provider string,
	validatedAt time.Time,
) (Analysis, error) {
	return NewAnalysisWithConfig(marketDemand, competitorAnalysis, techStack, features, mrr, effort, provider, validatedAt, config.DefaultDomainConfig())
}

// NewAnalysisWithConfig creates an Analysis with full schema validation
func NewAnalysisWithConfig(
	marketDemand float64,
	competitorAnalysis string,
	techStack []string,
	features []string,
	mrr MRRProjection,
	effort EffortEstimation,
	provider string,
	validatedAt time.Time,
	cfg *config.DomainConfig,
) (Analysis, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if marketDemand < cfg.MinMarketDemand || marketDemand > cfg.MaxMarketDemand {
		return Analysis{}, pkgerrors.NewValidationError(
			fmt.Sprintf("marketDemand must be between %g and %g, got %g", cfg.MinMarketDemand, cfg.MaxMarketDemand, marketDemand))
	}

	if strings.TrimSpace(competitorAnalysis) == "" {
		return Analysis{}, pkgerrors.NewValidationError("competitorAnalysis cannot be empty")
	}

	if len(techStack) == 0 {
		return Analysis{}, pkgerrors.NewValidationError("techStackSuggestion cannot be empty")
	}
	if len(techStack) > cfg.MaxTechStackEntries {
		return Analysis{}, pkgerrors.NewValidationError(
			fmt.Sprintf("techStackSuggestion exceeds maximum of %d entries", cfg.MaxTechStackEntries))
	}

	if len(features) == 0 {
		return Analysis{}, pkgerrors.NewValidationError("featureSuggestions cannot be empty")
	}
	if len(features) > cfg.MaxFeatureSuggestions {
		return Analysis{}, pkgerrors.NewValidationError(
			fmt.Sprintf("featureSuggestions exceeds maximum of %d entries", cfg.MaxFeatureSuggestions))
	}

	if mrr.Min < 0 || mrr.Max < 0 {
		return Analysis{}, pkgerrors.NewValidationError("mrrProjection values cannot be negative")
	}
	// Reject, never swap: an inverted range means the provider produced an
	// inconsistent object, and the caller must know.
	if mrr.Min > mrr.Max {
		return Analysis{}, pkgerrors.NewValidationError(
			fmt.Sprintf("mrrProjection.min (%g) cannot exceed mrrProjection.max (%g)", mrr.Min, mrr.Max))
	}

	if effort.Months <= 0 {
		return Analysis{}, pkgerrors.NewValidationError("effortEstimation.months must be a positive integer")
	}
	if effort.TeamSize <= 0 {
		return Analysis{}, pkgerrors.NewValidationError("effortEstimation.teamSize must be a positive integer")
	}

	if strings.TrimSpace(provider) == "" {
		return Analysis{}, pkgerrors.NewValidationError("provider cannot be empty")
	}

	if validatedAt.IsZero() {
		validatedAt = time.Now()
	}

	return Analysis{
		marketDemand:        marketDemand,
		competitorAnalysis:  competitorAnalysis,
		techStackSuggestion: copyStrings(techStack),
		featureSuggestions:  copyStrings(features),
		mrrProjection:       mrr,
		effortEstimation:    effort,
		provider:            provider,
		validatedAt:         validatedAt,
	}, nil
}

// MarketDemand returns the market demand score
func (a Analysis) MarketDemand() float64 {
	return a.marketDemand
}

// CompetitorAnalysis returns the competitor analysis text
func (a Analysis) CompetitorAnalysis() string {
	return a.competitorAnalysis
}

// TechStackSuggestion returns the suggested technologies, in provider order
func (a Analysis) TechStackSuggestion() []string {
	return copyStrings(a.techStackSuggestion)
}

// FeatureSuggestions returns the suggested features, in provider order
func (a Analysis) FeatureSuggestions() []string {
	return copyStrings(a.featureSuggestions)
}

// MRRProjection returns the projected revenue range
func (a Analysis) MRRProjection() MRRProjection {
	return a.mrrProjection
}

// EffortEstimation returns the estimated implementation effort
func (a Analysis) EffortEstimation() EffortEstimation {
	return a.effortEstimation
}

// Provider returns the name of the AI backend that produced the result
func (a Analysis) Provider() string {
	return a.provider
}

// ValidatedAt returns the completion timestamp
func (a Analysis) ValidatedAt() time.Time {
	return a.validatedAt
}

// Equals checks if two analyses are equal field for field
func (a Analysis) Equals(other Analysis) bool {
	if a.marketDemand != other.marketDemand ||
		a.competitorAnalysis != other.competitorAnalysis ||
		a.mrrProjection != other.mrrProjection ||
		a.effortEstimation != other.effortEstimation ||
		a.provider != other.provider ||
		!a.validatedAt.Equal(other.validatedAt) {
		return false
	}
	return equalStrings(a.techStackSuggestion, other.techStackSuggestion) &&
		equalStrings(a.featureSuggestions, other.featureSuggestions)
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
