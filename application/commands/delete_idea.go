package commands

import (
	"errors"
)

// DeleteIdeaCommand represents the command to delete an idea.
// Deletion is idempotent: deleting an id that does not exist (or is not
// owned by the caller) succeeds without effect.
type DeleteIdeaCommand struct {
	IdeaID string `json:"idea_id" validate:"required,uuid"`
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd DeleteIdeaCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.IdeaID == "" {
		return errors.New("idea ID is required")
	}
	return nil
}
