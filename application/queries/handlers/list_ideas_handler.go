package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"ideaforge-backend/application/ports"
	"ideaforge-backend/application/queries"
	"ideaforge-backend/domain/core/entities"
)

// ListIdeasHandler handles idea list queries
type ListIdeasHandler struct {
	ideaRepo ports.IdeaRepository
	logger   *zap.Logger
}

// NewListIdeasHandler creates a new list ideas handler
func NewListIdeasHandler(ideaRepo ports.IdeaRepository, logger *zap.Logger) *ListIdeasHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListIdeasHandler{
		ideaRepo: ideaRepo,
		logger:   logger,
	}
}

// Handle executes the list ideas query
func (h *ListIdeasHandler) Handle(ctx context.Context, query queries.ListIdeasQuery) (*queries.ListIdeasResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	ideas, err := h.ideaRepo.Search(ctx, ports.SearchCriteria{
		UserID:    query.UserID,
		Query:     query.Search,
		Tags:      query.Tags,
		Validated: query.Validated,
	})
	if err != nil {
		return nil, err
	}

	sortIdeas(ideas, query.SortBy, query.SortDesc)

	total := len(ideas)
	ideas = paginate(ideas, query.Offset, query.Limit)

	views := make([]queries.IdeaView, 0, len(ideas))
	for _, idea := range ideas {
		views = append(views, queries.NewIdeaView(idea))
	}

	return &queries.ListIdeasResult{
		Ideas: views,
		Total: total,
	}, nil
}

// sortIdeas orders ideas in place by the requested key. The default is
// newest first. Market-demand ordering is always descending and places
// unvalidated ideas after all validated ones.
func sortIdeas(ideas []*entities.Idea, sortBy string, desc bool) {
	switch sortBy {
	case queries.SortTitle:
		sort.SliceStable(ideas, func(i, j int) bool {
			a := strings.ToLower(ideas[i].Content().Title())
			b := strings.ToLower(ideas[j].Content().Title())
			if desc {
				return a > b
			}
			return a < b
		})
	case queries.SortUpdatedAt:
		sort.SliceStable(ideas, func(i, j int) bool {
			if desc {
				return ideas[i].UpdatedAt().After(ideas[j].UpdatedAt())
			}
			return ideas[i].UpdatedAt().Before(ideas[j].UpdatedAt())
		})
	case queries.SortMarketDemand:
		sort.SliceStable(ideas, func(i, j int) bool {
			ai, aj := ideas[i].Analysis(), ideas[j].Analysis()
			if ai == nil && aj == nil {
				return ideas[i].CreatedAt().After(ideas[j].CreatedAt())
			}
			if ai == nil {
				return false
			}
			if aj == nil {
				return true
			}
			return ai.MarketDemand() > aj.MarketDemand()
		})
	case queries.SortCreatedAt, "":
		if sortBy == "" {
			desc = true
		}
		sort.SliceStable(ideas, func(i, j int) bool {
			if desc {
				return ideas[i].CreatedAt().After(ideas[j].CreatedAt())
			}
			return ideas[i].CreatedAt().Before(ideas[j].CreatedAt())
		})
	}
}

func paginate(ideas []*entities.Idea, offset, limit int) []*entities.Idea {
	if offset >= len(ideas) {
		return nil
	}
	ideas = ideas[offset:]
	if limit > 0 && limit < len(ideas) {
		ideas = ideas[:limit]
	}
	return ideas
}
