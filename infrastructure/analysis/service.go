package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"ideaforge-backend/application/ports"
	"ideaforge-backend/domain/config"
	"ideaforge-backend/domain/core/valueobjects"
	pkgerrors "ideaforge-backend/pkg/errors"
)

// Service routes analysis requests to a named provider, builds the
// prompt, and turns the raw generated text into a validated Analysis.
// It never retries: every failure is classified and handed back to the
// caller, who decides.
type Service struct {
	providers       map[string]Provider
	defaultProvider string
	domainCfg       *config.DomainConfig
	logger          *zap.Logger
}

// NewService creates an analyzer over the given providers. The default
// provider is used when a request names none.
func NewService(providers []Provider, defaultProvider string, domainCfg *config.DomainConfig, logger *zap.Logger) (*Service, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := make(map[string]Provider, len(providers))
	for _, p := range providers {
		registry[p.Name()] = p
	}

	if defaultProvider == "" {
		defaultProvider = ProviderGemini
	}
	if _, ok := registry[defaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %q is not registered", defaultProvider)
	}

	return &Service{
		providers:       registry,
		defaultProvider: defaultProvider,
		domainCfg:       domainCfg,
		logger:          logger,
	}, nil
}

// Providers lists the registered provider names
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Analyze produces a validated analysis for the request
func (s *Service) Analyze(ctx context.Context, req ports.AnalysisRequest) (valueobjects.Analysis, error) {
	if strings.TrimSpace(req.Title) == "" {
		return valueobjects.Analysis{}, pkgerrors.NewValidationError("title cannot be empty")
	}
	if strings.TrimSpace(req.Description) == "" {
		return valueobjects.Analysis{}, pkgerrors.NewValidationError("description cannot be empty")
	}

	name := req.Provider
	if name == "" {
		name = s.defaultProvider
	}
	provider, ok := s.providers[name]
	if !ok {
		return valueobjects.Analysis{}, pkgerrors.NewValidationError(
			fmt.Sprintf("unknown provider %q", name))
	}

	prompt := buildPrompt(req.Title, req.Description, req.Tags)

	started := time.Now()
	text, err := provider.Complete(ctx, prompt, DefaultCompletionOptions())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return valueobjects.Analysis{}, pkgerrors.NewProviderUnavailableError(name, err)
		}
		if appErr := pkgerrors.GetAppError(err); appErr != nil {
			return valueobjects.Analysis{}, appErr
		}
		return valueobjects.Analysis{}, pkgerrors.NewProviderUnavailableError(name, err)
	}

	s.logger.Debug("Provider completed",
		zap.String("provider", name),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("responseLength", len(text)),
	)

	analysis, err := s.parseAnalysis(name, text)
	if err != nil {
		return valueobjects.Analysis{}, err
	}

	return analysis, nil
}

// buildPrompt constructs the assessment prompt, enumerating the exact
// JSON object the provider must return
func buildPrompt(title, description string, tags []string) string {
	return fmt.Sprintf(`Analyze this SaaS idea and provide a detailed assessment:

Title: %s
Description: %s
Tags: %s

Please respond with a JSON object containing:
{
  "marketDemand": <number between 1-10>,
  "competitorAnalysis": "<detailed analysis of competition>",
  "techStackSuggestion": ["<array of recommended technologies>"],
  "featureSuggestions": ["<array of key features to implement>"],
  "mrrProjection": {
    "min": <minimum monthly recurring revenue projection>,
    "max": <maximum monthly recurring revenue projection>
  },
  "effortEstimation": {
    "months": <estimated development time in months>,
    "teamSize": <recommended team size>
  }
}

Consider market size, competition level, technical complexity, monetization potential, and implementation effort.`,
		title, description, strings.Join(tags, ", "))
}

// analysisPayload mirrors the expected response object. Pointer fields
// distinguish a missing key from a zero value.
type analysisPayload struct {
	MarketDemand        *float64  `json:"marketDemand"`
	CompetitorAnalysis  *string   `json:"competitorAnalysis"`
	TechStackSuggestion *[]string `json:"techStackSuggestion"`
	FeatureSuggestions  *[]string `json:"featureSuggestions"`
	MRRProjection       *struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"mrrProjection"`
	EffortEstimation *struct {
		Months   *float64 `json:"months"`
		TeamSize *float64 `json:"teamSize"`
	} `json:"effortEstimation"`
}

// parseAnalysis extracts the JSON object embedded in the generated text
// and validates it into an Analysis
func (s *Service) parseAnalysis(provider, text string) (valueobjects.Analysis, error) {
	candidate, ok := extractJSONObject(text)
	if !ok {
		s.logger.Warn("No JSON object in provider response",
			zap.String("provider", provider),
			zap.Int("responseLength", len(text)),
		)
		return valueobjects.Analysis{}, pkgerrors.NewUnparsableResponseError(provider)
	}

	if !json.Valid([]byte(candidate)) {
		return valueobjects.Analysis{}, pkgerrors.NewUnparsableResponseError(provider)
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return valueobjects.Analysis{}, pkgerrors.NewInvalidAnalysisSchemaError(provider, err)
	}

	if err := checkPresence(payload); err != nil {
		return valueobjects.Analysis{}, pkgerrors.NewInvalidAnalysisSchemaError(provider, err)
	}

	months := *payload.EffortEstimation.Months
	teamSize := *payload.EffortEstimation.TeamSize
	if months != math.Trunc(months) || teamSize != math.Trunc(teamSize) {
		return valueobjects.Analysis{}, pkgerrors.NewInvalidAnalysisSchemaError(provider,
			fmt.Errorf("effortEstimation fields must be integers"))
	}

	analysis, err := valueobjects.NewAnalysisWithConfig(
		*payload.MarketDemand,
		*payload.CompetitorAnalysis,
		*payload.TechStackSuggestion,
		*payload.FeatureSuggestions,
		valueobjects.MRRProjection{
			Min: *payload.MRRProjection.Min,
			Max: *payload.MRRProjection.Max,
		},
		valueobjects.EffortEstimation{
			Months:   int(months),
			TeamSize: int(teamSize),
		},
		provider,
		time.Now(),
		s.domainCfg,
	)
	if err != nil {
		return valueobjects.Analysis{}, pkgerrors.NewInvalidAnalysisSchemaError(provider, err)
	}

	return analysis, nil
}

// checkPresence verifies every required field arrived
func checkPresence(p analysisPayload) error {
	switch {
	case p.MarketDemand == nil:
		return fmt.Errorf("missing field marketDemand")
	case p.CompetitorAnalysis == nil:
		return fmt.Errorf("missing field competitorAnalysis")
	case p.TechStackSuggestion == nil:
		return fmt.Errorf("missing field techStackSuggestion")
	case p.FeatureSuggestions == nil:
		return fmt.Errorf("missing field featureSuggestions")
	case p.MRRProjection == nil:
		return fmt.Errorf("missing field mrrProjection")
	case p.MRRProjection.Min == nil || p.MRRProjection.Max == nil:
		return fmt.Errorf("mrrProjection must contain min and max")
	case p.EffortEstimation == nil:
		return fmt.Errorf("missing field effortEstimation")
	case p.EffortEstimation.Months == nil || p.EffortEstimation.TeamSize == nil:
		return fmt.Errorf("effortEstimation must contain months and teamSize")
	}
	return nil
}

// extractJSONObject returns the first balanced top-level JSON object in
// the text. Providers often wrap the object in prose or a markdown
// fence; brace counting tracks string and escape state so braces inside
// string values do not end the scan early.
func extractJSONObject(text string) (string, bool) {
	text = stripFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

// stripFences removes a surrounding markdown code fence if present
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	return text
}
