package dynamodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaforge-backend/domain/core/entities"
	"ideaforge-backend/domain/core/valueobjects"
)

func newTestRepository() *IdeaRepository {
	return &IdeaRepository{tableName: "ideas", logger: zap.NewNop()}
}

func buildValidatedIdea(t *testing.T) *entities.Idea {
	t.Helper()

	content, err := valueobjects.NewIdeaContent("AI meal planner", "Plans weekly meals from pantry photos")
	require.NoError(t, err)

	validatedAt := time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC)
	analysis, err := valueobjects.NewAnalysis(
		8,
		"Crowded space, but no pantry-photo angle",
		[]string{"Go", "DynamoDB", "React"},
		[]string{"Photo import", "Shopping list export"},
		valueobjects.MRRProjection{Min: 2000, Max: 15000},
		valueobjects.EffortEstimation{Months: 4, TeamSize: 2},
		"gemini",
		validatedAt,
	)
	require.NoError(t, err)

	idea, err := entities.ReconstructIdea(
		valueobjects.NewIdeaID(),
		"user-1",
		content,
		[]string{"food", "saas"},
		&analysis,
		time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC),
		validatedAt,
		3,
	)
	require.NoError(t, err)
	return idea
}

func TestItemMappingRoundTripsValidatedIdea(t *testing.T) {
	repo := newTestRepository()
	idea := buildValidatedIdea(t)

	item := repo.toItem(idea)
	assert.Equal(t, "USER#user-1", item.PK)
	assert.Equal(t, "IDEA#"+idea.ID().String(), item.SK)
	assert.Equal(t, "IDEA", item.EntityType)

	back, err := repo.toEntity(item)
	require.NoError(t, err)

	assert.Equal(t, idea.ID().String(), back.ID().String())
	assert.Equal(t, idea.UserID(), back.UserID())
	assert.Equal(t, idea.Content().Title(), back.Content().Title())
	assert.Equal(t, idea.Content().Description(), back.Content().Description())
	assert.Equal(t, idea.GetTags(), back.GetTags())
	assert.Equal(t, idea.Version(), back.Version())
	assert.True(t, idea.CreatedAt().Equal(back.CreatedAt()))
	assert.True(t, idea.UpdatedAt().Equal(back.UpdatedAt()))

	require.True(t, back.IsValidated())
	original := idea.Analysis()
	restored := back.Analysis()
	assert.Equal(t, original.MarketDemand(), restored.MarketDemand())
	assert.Equal(t, original.CompetitorAnalysis(), restored.CompetitorAnalysis())
	assert.Equal(t, original.TechStackSuggestion(), restored.TechStackSuggestion())
	assert.Equal(t, original.FeatureSuggestions(), restored.FeatureSuggestions())
	assert.Equal(t, original.MRRProjection(), restored.MRRProjection())
	assert.Equal(t, original.EffortEstimation(), restored.EffortEstimation())
	assert.Equal(t, original.Provider(), restored.Provider())
	assert.True(t, original.ValidatedAt().Equal(restored.ValidatedAt()))
}

func TestItemMappingRoundTripsUnvalidatedIdea(t *testing.T) {
	repo := newTestRepository()

	content, err := valueobjects.NewIdeaContent("Uptime pager", "On-call paging for small teams")
	require.NoError(t, err)

	idea, err := entities.ReconstructIdea(
		valueobjects.NewIdeaID(),
		"user-2",
		content,
		nil,
		nil,
		time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC),
		1,
	)
	require.NoError(t, err)

	back, err := repo.toEntity(repo.toItem(idea))
	require.NoError(t, err)

	assert.False(t, back.IsValidated())
	assert.Nil(t, back.Analysis())
	assert.Empty(t, back.GetTags())

	// Loaded entities overwrite, fresh ones insert
	assert.True(t, back.IsPersisted())
	fresh, err := entities.NewIdea("user-2", content, nil)
	require.NoError(t, err)
	assert.False(t, fresh.IsPersisted())
}
