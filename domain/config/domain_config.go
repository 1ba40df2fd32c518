package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Idea constraints
	MaxTitleLength       int
	MinTitleLength       int
	MaxDescriptionLength int
	MaxTagsPerIdea       int
	MaxTagLength         int

	// Analysis constraints
	MinMarketDemand       float64
	MaxMarketDemand       float64
	MaxTechStackEntries   int
	MaxFeatureSuggestions int

	// Performance limits
	MaxIdeasPerQuery int

	// Time constraints
	AnalysisTimeout time.Duration

	// Validation settings
	AllowEmptyTags bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Idea constraints
		MaxTitleLength:       200,
		MinTitleLength:       1,
		MaxDescriptionLength: 10000,
		MaxTagsPerIdea:       20,
		MaxTagLength:         50,

		// Analysis constraints
		MinMarketDemand:       1,
		MaxMarketDemand:       10,
		MaxTechStackEntries:   25,
		MaxFeatureSuggestions: 25,

		// Performance limits
		MaxIdeasPerQuery: 1000,

		// Time constraints
		AnalysisTimeout: 30 * time.Second,

		// Validation settings
		AllowEmptyTags: true,
	}
}
