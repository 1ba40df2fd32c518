package events

import (
	"time"

	"ideaforge-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Idea Events

// IdeaCreated is raised when a new idea is created
type IdeaCreated struct {
	BaseEvent
	IdeaID valueobjects.IdeaID `json:"idea_id"`
	UserID string              `json:"user_id"`
}

// NewIdeaCreated creates an IdeaCreated event
func NewIdeaCreated(ideaID valueobjects.IdeaID, userID string, timestamp time.Time) IdeaCreated {
	return IdeaCreated{
		BaseEvent: BaseEvent{
			AggregateID: ideaID.String(),
			EventType:   "idea.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		IdeaID: ideaID,
		UserID: userID,
	}
}

// ContentSnapshot captures an idea's title and description at the time
// an event was raised, in a form that serializes for subscribers.
type ContentSnapshot struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// IdeaContentUpdated is raised when an idea's title or description changes
type IdeaContentUpdated struct {
	BaseEvent
	IdeaID     valueobjects.IdeaID `json:"idea_id"`
	OldContent ContentSnapshot     `json:"old_content"`
	NewContent ContentSnapshot     `json:"new_content"`
}

// NewIdeaContentUpdated creates an IdeaContentUpdated event
func NewIdeaContentUpdated(ideaID valueobjects.IdeaID, oldContent, newContent valueobjects.IdeaContent, timestamp time.Time) IdeaContentUpdated {
	return IdeaContentUpdated{
		BaseEvent: BaseEvent{
			AggregateID: ideaID.String(),
			EventType:   "idea.content_updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		IdeaID: ideaID,
		OldContent: ContentSnapshot{
			Title:       oldContent.Title(),
			Description: oldContent.Description(),
		},
		NewContent: ContentSnapshot{
			Title:       newContent.Title(),
			Description: newContent.Description(),
		},
	}
}

// IdeaTagsUpdated is raised when an idea's tags change
type IdeaTagsUpdated struct {
	BaseEvent
	IdeaID  valueobjects.IdeaID `json:"idea_id"`
	OldTags []string            `json:"old_tags"`
	NewTags []string            `json:"new_tags"`
}

// NewIdeaTagsUpdated creates an IdeaTagsUpdated event
func NewIdeaTagsUpdated(ideaID valueobjects.IdeaID, oldTags, newTags []string, timestamp time.Time) IdeaTagsUpdated {
	return IdeaTagsUpdated{
		BaseEvent: BaseEvent{
			AggregateID: ideaID.String(),
			EventType:   "idea.tags_updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		IdeaID:  ideaID,
		OldTags: oldTags,
		NewTags: newTags,
	}
}

// IdeaAnalyzed is raised when an AI analysis is attached to an idea
type IdeaAnalyzed struct {
	BaseEvent
	IdeaID       valueobjects.IdeaID `json:"idea_id"`
	UserID       string              `json:"user_id"`
	Provider     string              `json:"provider"`
	MarketDemand float64             `json:"market_demand"`
}

// NewIdeaAnalyzed creates an IdeaAnalyzed event
func NewIdeaAnalyzed(ideaID valueobjects.IdeaID, userID string, analysis valueobjects.Analysis, timestamp time.Time) IdeaAnalyzed {
	return IdeaAnalyzed{
		BaseEvent: BaseEvent{
			AggregateID: ideaID.String(),
			EventType:   "idea.analyzed",
			Timestamp:   timestamp,
			Version:     1,
		},
		IdeaID:       ideaID,
		UserID:       userID,
		Provider:     analysis.Provider(),
		MarketDemand: analysis.MarketDemand(),
	}
}

// IdeaAnalysisFailed is raised when an analysis attempt did not produce
// a usable result. The idea itself is unaffected.
type IdeaAnalysisFailed struct {
	BaseEvent
	IdeaID    valueobjects.IdeaID `json:"idea_id"`
	UserID    string              `json:"user_id"`
	Provider  string              `json:"provider"`
	Reason    string              `json:"reason"`
	Retryable bool                `json:"retryable"`
}

// NewIdeaAnalysisFailed creates an IdeaAnalysisFailed event
func NewIdeaAnalysisFailed(ideaID valueobjects.IdeaID, userID, provider, reason string, retryable bool, timestamp time.Time) IdeaAnalysisFailed {
	return IdeaAnalysisFailed{
		BaseEvent: BaseEvent{
			AggregateID: ideaID.String(),
			EventType:   "idea.analysis_failed",
			Timestamp:   timestamp,
			Version:     1,
		},
		IdeaID:    ideaID,
		UserID:    userID,
		Provider:  provider,
		Reason:    reason,
		Retryable: retryable,
	}
}

// IdeaDeleted is raised when an idea is deleted
type IdeaDeleted struct {
	BaseEvent
	IdeaID valueobjects.IdeaID `json:"idea_id"`
	UserID string              `json:"user_id"`
	Title  string              `json:"title"`
	Tags   []string            `json:"tags"`
}

// NewIdeaDeleted creates an IdeaDeleted event
func NewIdeaDeleted(ideaID valueobjects.IdeaID, userID, title string, tags []string, timestamp time.Time) IdeaDeleted {
	return IdeaDeleted{
		BaseEvent: BaseEvent{
			AggregateID: ideaID.String(),
			EventType:   "idea.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		IdeaID: ideaID,
		UserID: userID,
		Title:  title,
		Tags:   tags,
	}
}
