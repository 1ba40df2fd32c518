package di

import (
	"context"
	"fmt"
	"time"

	"ideaforge-backend/application/commands"
	"ideaforge-backend/application/commands/bus"
	commands_handlers "ideaforge-backend/application/commands/handlers"
	"ideaforge-backend/application/ports"
	"ideaforge-backend/application/queries"
	querybus "ideaforge-backend/application/queries/bus"
	queries_handlers "ideaforge-backend/application/queries/handlers"
	domaincfg "ideaforge-backend/domain/config"
	"ideaforge-backend/infrastructure/analysis"
	"ideaforge-backend/infrastructure/config"
	"ideaforge-backend/infrastructure/messaging/eventbridge"
	dynamodbpersistence "ideaforge-backend/infrastructure/persistence/dynamodb"
	"ideaforge-backend/pkg/auth"
	"ideaforge-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig creates the domain configuration, letting the
// environment override the analysis deadline
func ProvideDomainConfig(cfg *config.Config) *domaincfg.DomainConfig {
	dc := domaincfg.DefaultDomainConfig()
	if cfg.AnalysisTimeout > 0 {
		dc.AnalysisTimeout = cfg.AnalysisTimeout
	}
	return dc
}

// ProvideIdeaRepository creates the idea repository
func ProvideIdeaRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.IdeaRepository {
	return dynamodbpersistence.NewIdeaRepository(
		client,
		cfg.DynamoDBTable,
		logger,
	)
}

// ProvideEventBus creates an event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewEventBridgePublisher(
		client,
		cfg.EventBusName,
		logger,
	)
}

// ProvideAnalysisProviders builds the set of AI completion providers
// reachable with the configured API keys. Each live provider is wrapped
// in a circuit breaker so a failing backend sheds load quickly. With
// UseMockAI set, deterministic mock providers replace all of them.
func ProvideAnalysisProviders(cfg *config.Config, logger *zap.Logger) []analysis.Provider {
	if cfg.UseMockAI {
		return []analysis.Provider{
			analysis.NewMockProvider(analysis.ProviderGemini),
			analysis.NewMockProvider(analysis.ProviderOpenAI),
			analysis.NewMockProvider(analysis.ProviderGrok),
		}
	}

	breakerCfg := analysis.DefaultBreakerConfig()
	var providers []analysis.Provider

	if cfg.GeminiAPIKey != "" {
		providers = append(providers, analysis.NewBreakerProvider(
			analysis.NewGeminiProvider(cfg.GeminiAPIKey), breakerCfg, logger))
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, analysis.NewBreakerProvider(
			analysis.NewOpenAIProvider(cfg.OpenAIAPIKey), breakerCfg, logger))
	}
	if cfg.GrokAPIKey != "" {
		providers = append(providers, analysis.NewBreakerProvider(
			analysis.NewGrokProvider(cfg.GrokAPIKey), breakerCfg, logger))
	}

	return providers
}

// ProvideAnalyzer creates the analysis service
func ProvideAnalyzer(
	providers []analysis.Provider,
	cfg *config.Config,
	dc *domaincfg.DomainConfig,
	logger *zap.Logger,
) (ports.Analyzer, error) {
	return analysis.NewService(providers, cfg.DefaultProvider, dc, logger)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("IdeaForge/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideDistributedRateLimiter creates a distributed rate limiter
func ProvideDistributedRateLimiter(client *awsdynamodb.Client, cfg *config.Config) *auth.DistributedRateLimiter {
	return auth.NewDistributedRateLimiter(
		client,
		cfg.DynamoDBTable,
		100,           // 100 requests
		1*time.Minute, // per minute
		"API",         // key prefix for API rate limiting
	)
}

// ProvideDistributedLock creates a distributed lock instance
func ProvideDistributedLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodbpersistence.DistributedLock {
	return dynamodbpersistence.NewDistributedLock(client, cfg.DynamoDBTable, logger)
}

// ProvideJWTValidator creates the token validator used by the HTTP layer
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvideCreateIdeaHandler creates the typed create handler. It is
// injected into the HTTP layer directly rather than through the command
// bus because creation returns the stored idea plus any analysis error,
// and the bus dispatches errors only.
func ProvideCreateIdeaHandler(
	ideaRepo ports.IdeaRepository,
	analyzer ports.Analyzer,
	eventBus ports.EventBus,
	metrics *observability.Metrics,
	dc *domaincfg.DomainConfig,
	logger *zap.Logger,
) *commands_handlers.CreateIdeaHandler {
	return commands_handlers.NewCreateIdeaHandler(ideaRepo, analyzer, eventBus, metrics, dc, logger)
}

// ProvideRevalidateIdeaHandler creates the typed revalidate handler
func ProvideRevalidateIdeaHandler(
	ideaRepo ports.IdeaRepository,
	analyzer ports.Analyzer,
	eventBus ports.EventBus,
	metrics *observability.Metrics,
	lock *dynamodbpersistence.DistributedLock,
	dc *domaincfg.DomainConfig,
	logger *zap.Logger,
) *commands_handlers.RevalidateIdeaHandler {
	return commands_handlers.NewRevalidateIdeaHandler(ideaRepo, analyzer, eventBus, metrics, lock, dc, logger)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	ideaRepo ports.IdeaRepository,
	eventBus ports.EventBus,
	dc *domaincfg.DomainConfig,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(bus.LoggingMiddleware(logger))

	// Register UpdateIdeaCommand handler
	updateIdeaHandler := commands_handlers.NewUpdateIdeaHandler(ideaRepo, eventBus, dc, logger)
	commandBus.Register(commands.UpdateIdeaCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateIdeaCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return updateIdeaHandler.Handle(ctx, updateCmd)
		},
	}))

	// Register DeleteIdeaCommand handler
	deleteIdeaHandler := commands_handlers.NewDeleteIdeaHandler(ideaRepo, eventBus, logger)
	commandBus.Register(commands.DeleteIdeaCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteIdeaCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteIdeaHandler.Handle(ctx, deleteCmd)
		},
	}))

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// dashboardCacheTTL bounds how stale the dashboard aggregates may get.
const dashboardCacheTTL = 30 // seconds

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	ideaRepo ports.IdeaRepository,
	cache ports.Cache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()
	instrumented := querybus.NewMetricsMiddleware(metrics)

	// Register GetIdeaQuery handler
	getIdeaHandler := queries_handlers.NewGetIdeaHandler(ideaRepo, logger)
	queryBus.Register(queries.GetIdeaQuery{}, &QueryHandlerAdapter{
		handler: instrumented.Wrap(querybus.QueryHandlerFunc(
			func(ctx context.Context, query querybus.Query) (interface{}, error) {
				getQuery, ok := query.(queries.GetIdeaQuery)
				if !ok {
					return nil, fmt.Errorf("invalid query type")
				}
				return getIdeaHandler.Handle(ctx, getQuery)
			})).Handle,
	})

	// Register ListIdeasQuery handler
	listIdeasHandler := queries_handlers.NewListIdeasHandler(ideaRepo, logger)
	queryBus.Register(queries.ListIdeasQuery{}, &QueryHandlerAdapter{
		handler: instrumented.Wrap(querybus.QueryHandlerFunc(
			func(ctx context.Context, query querybus.Query) (interface{}, error) {
				listQuery, ok := query.(queries.ListIdeasQuery)
				if !ok {
					return nil, fmt.Errorf("invalid query type")
				}
				return listIdeasHandler.Handle(ctx, listQuery)
			})).Handle,
	})

	// Register GetDashboardStatsQuery handler, cached since the stats
	// aggregate over every idea the user owns
	statsHandler := queries_handlers.NewGetDashboardStatsHandler(ideaRepo, logger)
	cachedStats := querybus.NewCachingMiddleware(cache, dashboardCacheTTL).Wrap(
		querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
			statsQuery, ok := query.(queries.GetDashboardStatsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return statsHandler.Handle(ctx, statsQuery)
		}),
	)
	queryBus.Register(queries.GetDashboardStatsQuery{}, &QueryHandlerAdapter{
		handler: instrumented.Wrap(cachedStats).Handle,
	})

	return queryBus
}

// ProvideInMemoryCache creates a simple in-memory cache
// In production, this would be Redis or similar
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}
