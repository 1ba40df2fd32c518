package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge-backend/domain/core/valueobjects"
)

func TestIdeaContentUpdatedSerializesBothVersions(t *testing.T) {
	oldContent, err := valueobjects.NewIdeaContent("Meal planner", "Plans meals")
	require.NoError(t, err)
	newContent, err := valueobjects.NewIdeaContent("AI meal planner", "Plans meals with AI")
	require.NoError(t, err)

	id := valueobjects.NewIdeaID()
	event := NewIdeaContentUpdated(id, oldContent, newContent, time.Now())

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var payload struct {
		EventType  string `json:"event_type"`
		OldContent struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"old_content"`
		NewContent struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"new_content"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.Equal(t, "idea.content_updated", payload.EventType)
	assert.Equal(t, "Meal planner", payload.OldContent.Title)
	assert.Equal(t, "AI meal planner", payload.NewContent.Title)
	assert.Equal(t, "Plans meals with AI", payload.NewContent.Description)
}
