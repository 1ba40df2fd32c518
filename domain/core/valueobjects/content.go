package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ideaforge-backend/domain/config"
	pkgerrors "ideaforge-backend/pkg/errors"
)

// IdeaContent is a value object for the user-supplied idea text
type IdeaContent struct {
	title       string
	description string
}

// NewIdeaContent creates content with validation using default configuration
func NewIdeaContent(title, description string) (IdeaContent, error) {
	return NewIdeaContentWithConfig(title, description, config.DefaultDomainConfig())
}

// NewIdeaContentWithConfig creates content with validation and configuration
func NewIdeaContentWithConfig(title, description string, cfg *config.DomainConfig) (IdeaContent, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" {
		return IdeaContent{}, pkgerrors.NewValidationError("title cannot be empty")
	}
	if description == "" {
		return IdeaContent{}, pkgerrors.NewValidationError("description cannot be empty")
	}

	titleLength := utf8.RuneCountInString(title)
	if titleLength < cfg.MinTitleLength {
		return IdeaContent{}, fmt.Errorf("title too short: minimum %d characters required", cfg.MinTitleLength)
	}
	if titleLength > cfg.MaxTitleLength {
		return IdeaContent{}, fmt.Errorf("title exceeds maximum length of %d characters", cfg.MaxTitleLength)
	}

	if utf8.RuneCountInString(description) > cfg.MaxDescriptionLength {
		return IdeaContent{}, fmt.Errorf("description exceeds maximum length of %d characters", cfg.MaxDescriptionLength)
	}

	return IdeaContent{
		title:       title,
		description: description,
	}, nil
}

// Title returns the idea title
func (c IdeaContent) Title() string {
	return c.title
}

// Description returns the idea description
func (c IdeaContent) Description() string {
	return c.description
}

// IsEmpty checks if content is empty
func (c IdeaContent) IsEmpty() bool {
	return c.title == "" && c.description == ""
}

// Equals checks if two contents are equal
func (c IdeaContent) Equals(other IdeaContent) bool {
	return c.title == other.title && c.description == other.description
}

// Matches reports whether the content contains the given text,
// case-insensitively, in either title or description.
func (c IdeaContent) Matches(text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(c.title), needle) ||
		strings.Contains(strings.ToLower(c.description), needle)
}

// Summary returns a truncated summary of the content
func (c IdeaContent) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}

	combined := c.title
	if c.description != "" {
		combined += ": " + c.description
	}

	if utf8.RuneCountInString(combined) <= maxLength {
		return combined
	}

	runes := []rune(combined)
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}
