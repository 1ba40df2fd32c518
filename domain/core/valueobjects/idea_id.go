package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// IdeaID is a value object representing a unique idea identifier
// Value objects are immutable and have no identity beyond their value
type IdeaID struct {
	value string
}

// NewIdeaID creates a new random IdeaID
func NewIdeaID() IdeaID {
	return IdeaID{value: uuid.New().String()}
}

// NewIdeaIDFromString creates an IdeaID from an existing string
func NewIdeaIDFromString(id string) (IdeaID, error) {
	if id == "" {
		return IdeaID{}, errors.New("idea ID cannot be empty")
	}
	if !isValidUUID(id) {
		return IdeaID{}, errors.New("idea ID must be a valid UUID")
	}
	return IdeaID{value: id}, nil
}

// String returns the string representation of the IdeaID
func (id IdeaID) String() string {
	return id.value
}

// Equals checks if two IdeaIDs are equal
func (id IdeaID) Equals(other IdeaID) bool {
	return id.value == other.value
}

// IsZero checks if the IdeaID is the zero value
func (id IdeaID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id IdeaID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *IdeaID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("IdeaID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
