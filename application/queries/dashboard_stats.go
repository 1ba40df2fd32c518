package queries

import (
	"errors"
)

// GetDashboardStatsQuery represents a query for a user's aggregate counts
type GetDashboardStatsQuery struct {
	UserID string
}

// Validate validates the GetDashboardStatsQuery
func (q GetDashboardStatsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// DashboardStatsResult aggregates a user's ideas for the dashboard.
// AverageMarketDemand covers validated ideas only and is zero when none
// are validated.
type DashboardStatsResult struct {
	TotalIdeas          int            `json:"totalIdeas"`
	ValidatedIdeas      int            `json:"validatedIdeas"`
	UnvalidatedIdeas    int            `json:"unvalidatedIdeas"`
	AverageMarketDemand float64        `json:"averageMarketDemand"`
	IdeasByProvider     map[string]int `json:"ideasByProvider"`
	TopTags             []TagCount     `json:"topTags"`
}

// TagCount pairs a tag with the number of ideas carrying it
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
