package commands

import (
	"errors"
)

// CreateIdeaCommand represents the command to create a new idea.
// Provider optionally overrides the owner's default AI provider for the
// initial analysis pass.
type CreateIdeaCommand struct {
	UserID      string   `json:"user_id" validate:"required"`
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"required,max=10000"`
	Tags        []string `json:"tags" validate:"max=20,dive,min=1,max=50"`
	Provider    string   `json:"provider" validate:"omitempty,oneof=openai gemini grok"`
}

// Validate validates the command
func (cmd CreateIdeaCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.Title == "" {
		return errors.New("title is required")
	}
	if len(cmd.Title) > MaxTitleLength {
		return errors.New("title exceeds maximum length")
	}
	if cmd.Description == "" {
		return errors.New("description is required")
	}
	if len(cmd.Description) > MaxDescriptionLength {
		return errors.New("description exceeds maximum length")
	}
	return nil
}

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 10000
)
