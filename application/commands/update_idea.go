package commands

import (
	"errors"
)

// UpdateIdeaCommand represents the command to update an idea's editable
// fields. Nil pointers mean "leave unchanged". Updating never re-triggers
// analysis; the owner revalidates explicitly.
type UpdateIdeaCommand struct {
	IdeaID      string    `json:"idea_id" validate:"required,uuid"`
	UserID      string    `json:"user_id" validate:"required"`
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,min=1,max=10000"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// Validate validates the command
func (cmd UpdateIdeaCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.IdeaID == "" {
		return errors.New("idea ID is required")
	}
	if cmd.Title == nil && cmd.Description == nil && cmd.Tags == nil {
		return errors.New("at least one field must be provided")
	}
	if cmd.Title != nil && (*cmd.Title == "" || len(*cmd.Title) > MaxTitleLength) {
		return errors.New("title must be between 1 and 200 characters")
	}
	if cmd.Description != nil && (*cmd.Description == "" || len(*cmd.Description) > MaxDescriptionLength) {
		return errors.New("description must be between 1 and 10000 characters")
	}
	return nil
}
