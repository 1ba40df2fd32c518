package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ideaforge-backend/application/ports"
	"ideaforge-backend/domain/core/entities"
	"ideaforge-backend/domain/core/valueobjects"
	pkgerrors "ideaforge-backend/pkg/errors"
)

// IdeaRepository implements ports.IdeaRepository using DynamoDB.
// Items live in a single table keyed by owner, so every access path is
// owner-scoped by construction: a different user's idea is simply not
// under the caller's partition key.
type IdeaRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewIdeaRepository creates a new IdeaRepository
func NewIdeaRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.IdeaRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdeaRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// ideaItem represents the DynamoDB item structure for an idea
type ideaItem struct {
	PK                  string   `dynamodbav:"PK"`
	SK                  string   `dynamodbav:"SK"`
	EntityType          string   `dynamodbav:"EntityType"`
	IdeaID              string   `dynamodbav:"IdeaID"`
	UserID              string   `dynamodbav:"UserID"`
	Title               string   `dynamodbav:"Title"`
	Description         string   `dynamodbav:"Description"`
	Tags                []string `dynamodbav:"Tags,omitempty"`
	Validated           bool     `dynamodbav:"Validated"`
	MarketDemand        float64  `dynamodbav:"MarketDemand,omitempty"`
	CompetitorAnalysis  string   `dynamodbav:"CompetitorAnalysis,omitempty"`
	TechStackSuggestion []string `dynamodbav:"TechStackSuggestion,omitempty"`
	FeatureSuggestions  []string `dynamodbav:"FeatureSuggestions,omitempty"`
	MRRProjectionMin    float64  `dynamodbav:"MRRProjectionMin,omitempty"`
	MRRProjectionMax    float64  `dynamodbav:"MRRProjectionMax,omitempty"`
	EffortMonths        int      `dynamodbav:"EffortMonths,omitempty"`
	EffortTeamSize      int      `dynamodbav:"EffortTeamSize,omitempty"`
	AIProvider          string   `dynamodbav:"AIProvider,omitempty"`
	ValidatedAt         string   `dynamodbav:"ValidatedAt,omitempty"`
	CreatedAt           string   `dynamodbav:"CreatedAt"`
	UpdatedAt           string   `dynamodbav:"UpdatedAt"`
	Version             int      `dynamodbav:"Version"`
}

func ideaPK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func ideaSK(id valueobjects.IdeaID) string {
	return fmt.Sprintf("IDEA#%s", id.String())
}

// Save persists an idea to DynamoDB. The first save of an entity must
// not clobber an existing item; later saves must not resurrect an item
// deleted since the entity was loaded, and must not overwrite a newer
// concurrent write.
func (r *IdeaRepository) Save(ctx context.Context, idea *entities.Idea) error {
	item := r.toItem(idea)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal idea")
	}

	input := &dynamodb.PutItemInput{
		TableName:                           aws.String(r.tableName),
		Item:                                av,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}

	if idea.IsPersisted() {
		input.ConditionExpression = aws.String("attribute_exists(PK) AND #version < :version")
		input.ExpressionAttributeNames = map[string]string{"#version": "Version"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":version": &types.AttributeValueMemberN{Value: strconv.Itoa(item.Version)},
		}
	} else {
		input.ConditionExpression = aws.String("attribute_not_exists(PK)")
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			// A missing old item means it was deleted since the load;
			// anything else lost an optimistic-locking race
			if len(condErr.Item) == 0 {
				return pkgerrors.NewNotFoundError("idea")
			}
			return pkgerrors.NewConflictError("idea was modified concurrently")
		}

		r.logger.Error("Failed to save idea",
			zap.String("ideaID", idea.ID().String()),
			zap.String("userID", idea.UserID()),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("save idea", err)
	}

	idea.MarkPersisted()

	r.logger.Debug("Saved idea",
		zap.String("ideaID", idea.ID().String()),
		zap.String("userID", idea.UserID()),
		zap.Bool("validated", idea.IsValidated()),
	)

	return nil
}

// GetByID retrieves one of the owner's ideas by its ID
func (r *IdeaRepository) GetByID(ctx context.Context, userID string, id valueobjects.IdeaID) (*entities.Idea, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ideaPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: ideaSK(id)},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get idea", err)
	}

	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("idea")
	}

	var item ideaItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal idea")
	}

	return r.toEntity(item)
}

// GetByUserID retrieves all ideas for a user
func (r *IdeaRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.Idea, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(ideaPK(userID))).
		And(expression.Key("SK").BeginsWith("IDEA#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build query expression")
	}

	return r.queryIdeas(ctx, expr)
}

// Search finds the owner's ideas matching the given criteria. Tag and
// validation filters run in DynamoDB; free-text matching is applied
// after the query since DynamoDB has no case-insensitive contains.
func (r *IdeaRepository) Search(ctx context.Context, criteria ports.SearchCriteria) ([]*entities.Idea, error) {
	if criteria.UserID == "" {
		return nil, pkgerrors.NewValidationError("userID is required for search")
	}

	keyCond := expression.Key("PK").Equal(expression.Value(ideaPK(criteria.UserID))).
		And(expression.Key("SK").BeginsWith("IDEA#"))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	var filter expression.ConditionBuilder
	hasFilter := false

	for _, tag := range criteria.Tags {
		cond := expression.Name("Tags").Contains(tag)
		if hasFilter {
			filter = filter.And(cond)
		} else {
			filter = cond
			hasFilter = true
		}
	}

	if criteria.Validated != nil {
		cond := expression.Name("Validated").Equal(expression.Value(*criteria.Validated))
		if hasFilter {
			filter = filter.And(cond)
		} else {
			filter = cond
			hasFilter = true
		}
	}

	if hasFilter {
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build search expression")
	}

	ideas, err := r.queryIdeas(ctx, expr)
	if err != nil {
		return nil, err
	}

	if criteria.Query != "" {
		matched := ideas[:0]
		for _, idea := range ideas {
			if idea.MatchesText(criteria.Query) {
				matched = append(matched, idea)
			}
		}
		ideas = matched
	}

	return ideas, nil
}

// Delete removes one of the owner's ideas. DynamoDB deletes are
// idempotent, which matches the contract: a missing item is not an error.
func (r *IdeaRepository) Delete(ctx context.Context, userID string, id valueobjects.IdeaID) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: ideaPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: ideaSK(id)},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return pkgerrors.NewDatabaseError("delete idea", err)
	}

	r.logger.Debug("Deleted idea",
		zap.String("ideaID", id.String()),
		zap.String("userID", userID),
	)

	return nil
}

// queryIdeas runs a paginated query and maps every item to an entity
func (r *IdeaRepository) queryIdeas(ctx context.Context, expr expression.Expression) ([]*entities.Idea, error) {
	var ideas []*entities.Idea
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastEvaluatedKey,
		}

		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query ideas", err)
		}

		for _, raw := range result.Items {
			var item ideaItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.Wrap(err, "failed to unmarshal idea")
			}

			idea, err := r.toEntity(item)
			if err != nil {
				r.logger.Warn("Skipping corrupt idea item",
					zap.String("ideaID", item.IdeaID),
					zap.Error(err),
				)
				continue
			}
			ideas = append(ideas, idea)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}

	return ideas, nil
}

// toItem maps the entity to its storage shape
func (r *IdeaRepository) toItem(idea *entities.Idea) ideaItem {
	item := ideaItem{
		PK:          ideaPK(idea.UserID()),
		SK:          ideaSK(idea.ID()),
		EntityType:  "IDEA",
		IdeaID:      idea.ID().String(),
		UserID:      idea.UserID(),
		Title:       idea.Content().Title(),
		Description: idea.Content().Description(),
		Tags:        idea.GetTags(),
		Validated:   idea.IsValidated(),
		CreatedAt:   idea.CreatedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt:   idea.UpdatedAt().UTC().Format(time.RFC3339Nano),
		Version:     idea.Version(),
	}

	if analysis := idea.Analysis(); analysis != nil {
		item.MarketDemand = analysis.MarketDemand()
		item.CompetitorAnalysis = analysis.CompetitorAnalysis()
		item.TechStackSuggestion = analysis.TechStackSuggestion()
		item.FeatureSuggestions = analysis.FeatureSuggestions()
		item.MRRProjectionMin = analysis.MRRProjection().Min
		item.MRRProjectionMax = analysis.MRRProjection().Max
		item.EffortMonths = analysis.EffortEstimation().Months
		item.EffortTeamSize = analysis.EffortEstimation().TeamSize
		item.AIProvider = analysis.Provider()
		item.ValidatedAt = analysis.ValidatedAt().UTC().Format(time.RFC3339Nano)
	}

	return item
}

// toEntity reconstructs the entity from its storage shape
func (r *IdeaRepository) toEntity(item ideaItem) (*entities.Idea, error) {
	id, err := valueobjects.NewIdeaIDFromString(item.IdeaID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid stored idea ID")
	}

	content, err := valueobjects.NewIdeaContent(item.Title, item.Description)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid stored idea content")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid stored CreatedAt")
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid stored UpdatedAt")
	}

	var analysis *valueobjects.Analysis
	if item.Validated {
		validatedAt, err := time.Parse(time.RFC3339Nano, item.ValidatedAt)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "invalid stored ValidatedAt")
		}

		a, err := valueobjects.NewAnalysis(
			item.MarketDemand,
			item.CompetitorAnalysis,
			item.TechStackSuggestion,
			item.FeatureSuggestions,
			valueobjects.MRRProjection{Min: item.MRRProjectionMin, Max: item.MRRProjectionMax},
			valueobjects.EffortEstimation{Months: item.EffortMonths, TeamSize: item.EffortTeamSize},
			item.AIProvider,
			validatedAt,
		)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "invalid stored analysis")
		}
		analysis = &a
	}

	return entities.ReconstructIdea(
		id,
		item.UserID,
		content,
		item.Tags,
		analysis,
		createdAt,
		updatedAt,
		item.Version,
	)
}
