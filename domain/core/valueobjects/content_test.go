package valueobjects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdeaContent(t *testing.T) {
	content, err := NewIdeaContent("  CLI time tracker  ", "  Track billable hours from the terminal.  ")
	require.NoError(t, err)

	assert.Equal(t, "CLI time tracker", content.Title())
	assert.Equal(t, "Track billable hours from the terminal.", content.Description())
	assert.False(t, content.IsEmpty())
}

func TestNewIdeaContentValidation(t *testing.T) {
	_, err := NewIdeaContent("", "description")
	assert.Error(t, err)

	_, err = NewIdeaContent("title", "")
	assert.Error(t, err)

	_, err = NewIdeaContent("   ", "description")
	assert.Error(t, err)

	_, err = NewIdeaContent(strings.Repeat("x", 201), "description")
	assert.Error(t, err)

	_, err = NewIdeaContent("title", strings.Repeat("x", 10001))
	assert.Error(t, err)
}

func TestIdeaContentMatches(t *testing.T) {
	content, err := NewIdeaContent("Invoice Builder", "Generate PDF invoices for freelancers")
	require.NoError(t, err)

	assert.True(t, content.Matches("invoice"))
	assert.True(t, content.Matches("PDF"))
	assert.True(t, content.Matches("FREELANCERS"))
	assert.True(t, content.Matches(""))
	assert.False(t, content.Matches("kubernetes"))
}

func TestIdeaContentSummary(t *testing.T) {
	content, err := NewIdeaContent("Short", "A description")
	require.NoError(t, err)

	assert.Equal(t, "Short: A description", content.Summary(100))
	assert.Equal(t, "Short: ...", content.Summary(10))
	assert.Equal(t, "", content.Summary(0))

	// Limits too small for an ellipsis truncate hard
	assert.Equal(t, "S", content.Summary(1))
	assert.Equal(t, "Sh", content.Summary(2))
	assert.Equal(t, "Sho", content.Summary(3))
}

func TestIdeaID(t *testing.T) {
	id := NewIdeaID()
	assert.False(t, id.IsZero())

	parsed, err := NewIdeaIDFromString(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equals(parsed))
}

func TestIdeaIDFromStringRejectsInvalid(t *testing.T) {
	_, err := NewIdeaIDFromString("")
	assert.Error(t, err)

	_, err = NewIdeaIDFromString("not-a-uuid")
	assert.Error(t, err)
}

func TestIdeaIDJSONRoundTrip(t *testing.T) {
	id := NewIdeaID()

	data, err := id.MarshalJSON()
	require.NoError(t, err)

	var decoded IdeaID
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.True(t, id.Equals(decoded))
}
