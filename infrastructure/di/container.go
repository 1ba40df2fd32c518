package di

import (
	"ideaforge-backend/application/commands/bus"
	commands_handlers "ideaforge-backend/application/commands/handlers"
	"ideaforge-backend/application/ports"
	querybus "ideaforge-backend/application/queries/bus"
	"ideaforge-backend/infrastructure/config"
	"ideaforge-backend/pkg/auth"
	"ideaforge-backend/pkg/observability"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	IdeaRepo       ports.IdeaRepository
	Analyzer       ports.Analyzer
	EventBus       ports.EventBus
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	CreateIdea     *commands_handlers.CreateIdeaHandler
	RevalidateIdea *commands_handlers.RevalidateIdeaHandler
	Cache          ports.Cache
	Metrics        *observability.Metrics
	RateLimiter    *auth.DistributedRateLimiter
	JWTValidator   *auth.JWTValidator
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideDomainConfig,
	ProvideIdeaRepository,
	ProvideEventBus,
	ProvideAnalysisProviders,
	ProvideAnalyzer,
	ProvideMetrics,
	ProvideDistributedRateLimiter,
	ProvideDistributedLock,
	ProvideJWTValidator,
	ProvideCreateIdeaHandler,
	ProvideRevalidateIdeaHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideInMemoryCache,
	wire.Struct(new(Container), "*"),
)
