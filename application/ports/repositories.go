package ports

import (
	"context"
	"time"

	"ideaforge-backend/domain/core/entities"
	"ideaforge-backend/domain/core/valueobjects"
	"ideaforge-backend/domain/events"
)

// IdeaRepository defines the interface for idea persistence.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation. Every operation is scoped to an owner: an idea that
// exists but belongs to someone else behaves exactly like one that does
// not exist.
type IdeaRepository interface {
	// Save persists an idea (create or update)
	Save(ctx context.Context, idea *entities.Idea) error

	// GetByID retrieves one of the owner's ideas by its ID
	GetByID(ctx context.Context, userID string, id valueobjects.IdeaID) (*entities.Idea, error)

	// GetByUserID retrieves all ideas for a user
	GetByUserID(ctx context.Context, userID string) ([]*entities.Idea, error)

	// Delete removes one of the owner's ideas. Deleting an idea that does
	// not exist is not an error.
	Delete(ctx context.Context, userID string, id valueobjects.IdeaID) error

	// Search finds the owner's ideas matching the given criteria
	Search(ctx context.Context, criteria SearchCriteria) ([]*entities.Idea, error)
}

// SearchCriteria defines search parameters. Sorting and pagination are
// applied by the query layer, not the repository.
type SearchCriteria struct {
	UserID    string
	Query     string
	Tags      []string
	Validated *bool
}

// AnalysisRequest carries what the analyzer needs to know about an idea
type AnalysisRequest struct {
	Title       string
	Description string
	Tags        []string
	Provider    string
}

// Analyzer defines the interface for producing an AI analysis of an idea.
// Implementations wait for at most the configured analysis timeout; they
// never retry on their own.
type Analyzer interface {
	// Analyze produces a fully validated analysis for the request, or a
	// typed error classifying the failure
	Analyze(ctx context.Context, req AnalysisRequest) (valueobjects.Analysis, error)

	// Providers lists the provider names this analyzer can route to
	Providers() []string
}

// AnalysisMetrics records the outcome and latency of analysis attempts
type AnalysisMetrics interface {
	RecordAnalysis(provider string, success bool, elapsed time.Duration)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
