package entities

import (
	"fmt"
	"strings"
	"time"

	"ideaforge-backend/domain/config"
	"ideaforge-backend/domain/core/valueobjects"
	"ideaforge-backend/domain/events"
	pkgerrors "ideaforge-backend/pkg/errors"
)

// Idea is the main entity representing a business idea owned by a user
// This is a rich domain model with encapsulated business logic
type Idea struct {
	// Private fields ensure encapsulation
	id        valueobjects.IdeaID
	userID    string
	content   valueobjects.IdeaContent
	tags      []string
	analysis  *valueobjects.Analysis
	createdAt time.Time
	updatedAt time.Time
	version   int

	// persisted reports whether a stored item backs this entity, which
	// decides whether a save is an insert or an overwrite
	persisted bool

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewIdea creates a new idea with full business rule validation.
// A new idea always starts unvalidated: analysis is attached separately
// once a provider has produced a usable result.
func NewIdea(userID string, content valueobjects.IdeaContent, tags []string) (*Idea, error) {
	return NewIdeaWithConfig(userID, content, tags, config.DefaultDomainConfig())
}

// NewIdeaWithConfig creates a new idea with configuration
func NewIdeaWithConfig(userID string, content valueobjects.IdeaContent, tags []string, cfg *config.DomainConfig) (*Idea, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	if content.IsEmpty() {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}

	normalized, err := normalizeTags(tags, cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	idea := &Idea{
		id:        valueobjects.NewIdeaID(),
		userID:    userID,
		content:   content,
		tags:      normalized,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	idea.addEvent(events.NewIdeaCreated(idea.id, userID, now))

	return idea, nil
}

// ReconstructIdea reconstructs an idea from repository data with preserved timestamps
func ReconstructIdea(
	id valueobjects.IdeaID,
	userID string,
	content valueobjects.IdeaContent,
	tags []string,
	analysis *valueobjects.Analysis,
	createdAt, updatedAt time.Time,
	version int,
) (*Idea, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	if content.IsEmpty() {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}

	if version < 1 {
		version = 1
	}

	idea := &Idea{
		id:        id,
		userID:    userID,
		content:   content,
		tags:      copyTags(tags),
		analysis:  analysis,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		persisted: true,
		events:    []events.DomainEvent{},
	}

	return idea, nil
}

// ID returns the idea's unique identifier
func (i *Idea) ID() valueobjects.IdeaID {
	return i.id
}

// UserID returns the owner's ID
func (i *Idea) UserID() string {
	return i.userID
}

// Content returns the idea's title and description
func (i *Idea) Content() valueobjects.IdeaContent {
	return i.content
}

// Version returns the idea's version for optimistic locking
func (i *Idea) Version() int {
	return i.version
}

// IsPersisted reports whether a stored item backs this entity
func (i *Idea) IsPersisted() bool {
	return i.persisted
}

// MarkPersisted records that the entity has been written to storage
func (i *Idea) MarkPersisted() {
	i.persisted = true
}

// IsValidated reports whether an analysis is attached
func (i *Idea) IsValidated() bool {
	return i.analysis != nil
}

// Analysis returns the attached analysis, or nil for an unvalidated idea
func (i *Idea) Analysis() *valueobjects.Analysis {
	if i.analysis == nil {
		return nil
	}
	a := *i.analysis
	return &a
}

// UpdateContent replaces the idea's title and description with validation.
// The existing analysis is kept as-is: it describes the idea at the time
// it was produced, and the owner decides when to revalidate.
func (i *Idea) UpdateContent(content valueobjects.IdeaContent) error {
	if content.IsEmpty() {
		return pkgerrors.NewValidationError("content cannot be empty")
	}

	if content.Equals(i.content) {
		return nil // No change needed
	}

	oldContent := i.content
	i.content = content
	i.updatedAt = time.Now()
	i.version++

	i.addEvent(events.NewIdeaContentUpdated(i.id, oldContent, content, i.updatedAt))

	return nil
}

// SetTags replaces the idea's tag list with validation
func (i *Idea) SetTags(tags []string) error {
	return i.SetTagsWithConfig(tags, config.DefaultDomainConfig())
}

// SetTagsWithConfig replaces the idea's tag list with configuration
func (i *Idea) SetTagsWithConfig(tags []string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	normalized, err := normalizeTags(tags, cfg)
	if err != nil {
		return err
	}

	if equalTags(normalized, i.tags) {
		return nil // No change needed
	}

	oldTags := i.tags
	i.tags = normalized
	i.updatedAt = time.Now()
	i.version++

	i.addEvent(events.NewIdeaTagsUpdated(i.id, oldTags, copyTags(normalized), i.updatedAt))

	return nil
}

// AttachAnalysis attaches a completed analysis, replacing any previous one
func (i *Idea) AttachAnalysis(analysis valueobjects.Analysis) error {
	if analysis.Provider() == "" {
		return pkgerrors.NewValidationError("analysis is missing a provider")
	}

	a := analysis
	i.analysis = &a
	i.updatedAt = time.Now()
	i.version++

	i.addEvent(events.NewIdeaAnalyzed(i.id, i.userID, analysis, i.updatedAt))

	return nil
}

// ClearAnalysis removes the attached analysis, returning the idea to the
// unvalidated state
func (i *Idea) ClearAnalysis() {
	if i.analysis == nil {
		return
	}

	i.analysis = nil
	i.updatedAt = time.Now()
	i.version++
}

// GetTags returns all tags
func (i *Idea) GetTags() []string {
	// Return a copy to maintain encapsulation
	return copyTags(i.tags)
}

// HasTag checks for a tag using case-insensitive comparison
func (i *Idea) HasTag(tag string) bool {
	for _, t := range i.tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// MatchesText checks whether the search text appears in the title or
// description, case-insensitively
func (i *Idea) MatchesText(text string) bool {
	return i.content.Matches(text)
}

// CreatedAt returns when the idea was created
func (i *Idea) CreatedAt() time.Time {
	return i.createdAt
}

// UpdatedAt returns when the idea was last updated
func (i *Idea) UpdatedAt() time.Time {
	return i.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (i *Idea) GetUncommittedEvents() []events.DomainEvent {
	return i.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (i *Idea) MarkEventsAsCommitted() {
	i.events = []events.DomainEvent{}
}

// RecordAnalysisFailure records a failed analysis attempt as a domain event.
// The idea's state does not change.
func (i *Idea) RecordAnalysisFailure(provider, reason string, retryable bool) {
	i.addEvent(events.NewIdeaAnalysisFailed(i.id, i.userID, provider, reason, retryable, time.Now()))
}

// RecordDeletion records the deletion of this idea as a domain event
func (i *Idea) RecordDeletion() {
	i.addEvent(events.NewIdeaDeleted(i.id, i.userID, i.content.Title(), i.GetTags(), time.Now()))
}

// addEvent adds a domain event to the uncommitted list
func (i *Idea) addEvent(event events.DomainEvent) {
	i.events = append(i.events, event)
}

// normalizeTags trims whitespace, drops empty entries and duplicates
// (first occurrence wins, case-insensitive), and enforces limits
func normalizeTags(tags []string, cfg *config.DomainConfig) ([]string, error) {
	normalized := []string{}
	seen := make(map[string]bool)

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			if cfg.AllowEmptyTags {
				continue
			}
			return nil, pkgerrors.NewValidationError("tag cannot be empty")
		}

		if len(tag) > cfg.MaxTagLength {
			return nil, pkgerrors.NewValidationError(
				fmt.Sprintf("tag exceeds maximum length of %d characters", cfg.MaxTagLength))
		}

		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, tag)
	}

	if len(normalized) > cfg.MaxTagsPerIdea {
		return nil, fmt.Errorf("maximum tags reached: %d", cfg.MaxTagsPerIdea)
	}

	return normalized, nil
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

func equalTags(a, b []string) bool {
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
