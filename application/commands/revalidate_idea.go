package commands

import (
	"errors"
)

// RevalidateIdeaCommand represents the command to re-run AI analysis
// against an idea's current fields, replacing any existing analysis
type RevalidateIdeaCommand struct {
	IdeaID   string `json:"idea_id" validate:"required,uuid"`
	UserID   string `json:"user_id" validate:"required"`
	Provider string `json:"provider" validate:"omitempty,oneof=openai gemini grok"`
}

// Validate validates the command
func (cmd RevalidateIdeaCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.IdeaID == "" {
		return errors.New("idea ID is required")
	}
	return nil
}
