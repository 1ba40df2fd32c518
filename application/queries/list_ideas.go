package queries

import (
	"errors"
)

// Sort keys accepted by ListIdeasQuery
const (
	SortCreatedAt    = "createdAt"
	SortUpdatedAt    = "updatedAt"
	SortTitle        = "title"
	SortMarketDemand = "marketDemand"
)

// ListIdeasQuery represents a query to list a user's ideas with an
// optional text/tag filter and a chosen sort key. Sorting by market
// demand always places unvalidated ideas last.
type ListIdeasQuery struct {
	UserID    string
	Search    string
	Tags      []string
	Validated *bool
	SortBy    string
	SortDesc  bool
	Limit     int
	Offset    int
}

// Validate validates the ListIdeasQuery
func (q ListIdeasQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	switch q.SortBy {
	case "", SortCreatedAt, SortUpdatedAt, SortTitle, SortMarketDemand:
	default:
		return errors.New("unsupported sort key")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return errors.New("limit and offset must be non-negative")
	}
	return nil
}

// ListIdeasResult represents the result of listing ideas
type ListIdeasResult struct {
	Ideas []IdeaView `json:"ideas"`
	Total int        `json:"total"`
}
