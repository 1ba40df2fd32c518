package handlers

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"ideaforge-backend/application/ports"
	"ideaforge-backend/application/queries"
)

// topTagLimit caps how many tags the dashboard reports
const topTagLimit = 10

// GetDashboardStatsHandler handles dashboard aggregate queries
type GetDashboardStatsHandler struct {
	ideaRepo ports.IdeaRepository
	logger   *zap.Logger
}

// NewGetDashboardStatsHandler creates a new dashboard stats handler
func NewGetDashboardStatsHandler(ideaRepo ports.IdeaRepository, logger *zap.Logger) *GetDashboardStatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GetDashboardStatsHandler{
		ideaRepo: ideaRepo,
		logger:   logger,
	}
}

// Handle executes the dashboard stats query
func (h *GetDashboardStatsHandler) Handle(ctx context.Context, query queries.GetDashboardStatsQuery) (*queries.DashboardStatsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	ideas, err := h.ideaRepo.GetByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	result := &queries.DashboardStatsResult{
		TotalIdeas:      len(ideas),
		IdeasByProvider: make(map[string]int),
	}

	tagCounts := make(map[string]int)
	demandSum := 0.0

	for _, idea := range ideas {
		if analysis := idea.Analysis(); analysis != nil {
			result.ValidatedIdeas++
			demandSum += analysis.MarketDemand()
			result.IdeasByProvider[analysis.Provider()]++
		}
		for _, tag := range idea.GetTags() {
			tagCounts[tag]++
		}
	}

	result.UnvalidatedIdeas = result.TotalIdeas - result.ValidatedIdeas
	if result.ValidatedIdeas > 0 {
		result.AverageMarketDemand = demandSum / float64(result.ValidatedIdeas)
	}

	result.TopTags = topTags(tagCounts, topTagLimit)

	return result, nil
}

// topTags returns the most used tags, ties broken alphabetically
func topTags(counts map[string]int, limit int) []queries.TagCount {
	tags := make([]queries.TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, queries.TagCount{Tag: tag, Count: count})
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})

	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}
