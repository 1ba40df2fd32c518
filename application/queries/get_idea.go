package queries

import (
	"errors"
	"time"

	"ideaforge-backend/domain/core/entities"
)

// GetIdeaQuery represents a query to get a single idea
type GetIdeaQuery struct {
	UserID string
	IdeaID string
}

// Validate validates the GetIdeaQuery
func (q GetIdeaQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.IdeaID == "" {
		return errors.New("idea ID is required")
	}
	return nil
}

// IdeaView is the read model returned by idea queries
type IdeaView struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags"`
	Validated   bool          `json:"validated"`
	Analysis    *AnalysisView `json:"analysis,omitempty"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

// AnalysisView is the read model of an attached analysis
type AnalysisView struct {
	MarketDemand        float64            `json:"marketDemand"`
	CompetitorAnalysis  string             `json:"competitorAnalysis"`
	TechStackSuggestion []string           `json:"techStackSuggestion"`
	FeatureSuggestions  []string           `json:"featureSuggestions"`
	MRRProjection       RangeView          `json:"mrrProjection"`
	EffortEstimation    EffortView         `json:"effortEstimation"`
	AIProvider          string             `json:"aiProvider"`
	ValidatedAt         string             `json:"validatedAt"`
}

// RangeView is a min/max pair
type RangeView struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EffortView is an effort estimate
type EffortView struct {
	Months   int `json:"months"`
	TeamSize int `json:"teamSize"`
}

// NewIdeaView maps an idea entity to its read model
func NewIdeaView(idea *entities.Idea) IdeaView {
	view := IdeaView{
		ID:          idea.ID().String(),
		UserID:      idea.UserID(),
		Title:       idea.Content().Title(),
		Description: idea.Content().Description(),
		Tags:        idea.GetTags(),
		Validated:   idea.IsValidated(),
		CreatedAt:   idea.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:   idea.UpdatedAt().UTC().Format(time.RFC3339),
	}

	if analysis := idea.Analysis(); analysis != nil {
		view.Analysis = &AnalysisView{
			MarketDemand:        analysis.MarketDemand(),
			CompetitorAnalysis:  analysis.CompetitorAnalysis(),
			TechStackSuggestion: analysis.TechStackSuggestion(),
			FeatureSuggestions:  analysis.FeatureSuggestions(),
			MRRProjection: RangeView{
				Min: analysis.MRRProjection().Min,
				Max: analysis.MRRProjection().Max,
			},
			EffortEstimation: EffortView{
				Months:   analysis.EffortEstimation().Months,
				TeamSize: analysis.EffortEstimation().TeamSize,
			},
			AIProvider:  analysis.Provider(),
			ValidatedAt: analysis.ValidatedAt().UTC().Format(time.RFC3339),
		}
	}

	return view
}
