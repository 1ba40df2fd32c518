package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ideaforge-backend/application/commands"
	"ideaforge-backend/application/ports"
	"ideaforge-backend/domain/config"
	"ideaforge-backend/domain/core/entities"
	"ideaforge-backend/domain/core/valueobjects"
	pkgerrors "ideaforge-backend/pkg/errors"
)

// CreateIdeaResult is the outcome of a create, carrying the final idea
// state plus the analysis failure when the idea was stored but the AI
// pass did not complete
type CreateIdeaResult struct {
	Idea          *entities.Idea
	AnalysisError *pkgerrors.AppError
}

// CreateIdeaHandler handles idea creation: the idea is persisted first,
// then analysis runs synchronously. A failed analysis never loses the
// user's input - the idea stays stored, unvalidated.
type CreateIdeaHandler struct {
	ideaRepo  ports.IdeaRepository
	analyzer  ports.Analyzer
	eventBus  ports.EventBus
	metrics   ports.AnalysisMetrics
	domainCfg *config.DomainConfig
	logger    *zap.Logger
}

// NewCreateIdeaHandler creates a new handler instance. metrics may be
// nil, in which case analysis attempts are not recorded.
func NewCreateIdeaHandler(
	ideaRepo ports.IdeaRepository,
	analyzer ports.Analyzer,
	eventBus ports.EventBus,
	metrics ports.AnalysisMetrics,
	domainCfg *config.DomainConfig,
	logger *zap.Logger,
) *CreateIdeaHandler {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateIdeaHandler{
		ideaRepo:  ideaRepo,
		analyzer:  analyzer,
		eventBus:  eventBus,
		metrics:   metrics,
		domainCfg: domainCfg,
		logger:    logger,
	}
}

// Handle executes the create idea command
func (h *CreateIdeaHandler) Handle(ctx context.Context, cmd commands.CreateIdeaCommand) (*CreateIdeaResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	content, err := valueobjects.NewIdeaContentWithConfig(cmd.Title, cmd.Description, h.domainCfg)
	if err != nil {
		return nil, err
	}

	idea, err := entities.NewIdeaWithConfig(cmd.UserID, content, cmd.Tags, h.domainCfg)
	if err != nil {
		return nil, err
	}

	// Persist before analyzing so the input survives any provider failure
	if err := h.ideaRepo.Save(ctx, idea); err != nil {
		return nil, err
	}

	h.publishEvents(ctx, idea)

	analysisCtx, cancel := context.WithTimeout(ctx, h.domainCfg.AnalysisTimeout)
	defer cancel()

	analysisStart := time.Now()
	analysis, err := h.analyzer.Analyze(analysisCtx, ports.AnalysisRequest{
		Title:       content.Title(),
		Description: content.Description(),
		Tags:        idea.GetTags(),
		Provider:    cmd.Provider,
	})
	if h.metrics != nil {
		h.metrics.RecordAnalysis(cmd.Provider, err == nil, time.Since(analysisStart))
	}
	if err != nil {
		appErr := pkgerrors.GetAppError(err)
		if appErr == nil {
			appErr = pkgerrors.NewProviderUnavailableError(cmd.Provider, err)
		}

		h.logger.Warn("Analysis failed, idea stored unvalidated",
			zap.String("ideaID", idea.ID().String()),
			zap.String("userID", cmd.UserID),
			zap.String("errorType", string(appErr.Type)),
			zap.Bool("retryable", appErr.Retryable),
		)

		idea.RecordAnalysisFailure(cmd.Provider, appErr.Message, appErr.Retryable)
		h.publishEvents(ctx, idea)

		return &CreateIdeaResult{Idea: idea, AnalysisError: appErr}, nil
	}

	// Re-read before attaching: if the owner deleted the idea while the
	// provider was working, the result is discarded, not an error
	stored, err := h.ideaRepo.GetByID(ctx, cmd.UserID, idea.ID())
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			h.logger.Info("Idea deleted during analysis, discarding result",
				zap.String("ideaID", idea.ID().String()),
			)
			return &CreateIdeaResult{Idea: idea}, nil
		}
		return nil, err
	}

	if err := stored.AttachAnalysis(analysis); err != nil {
		return nil, err
	}

	// The save is conditional on the item still existing, so a delete
	// that lands between the re-read and the save also discards
	if err := h.ideaRepo.Save(ctx, stored); err != nil {
		if pkgerrors.IsNotFound(err) {
			h.logger.Info("Idea deleted during analysis, discarding result",
				zap.String("ideaID", idea.ID().String()),
			)
			return &CreateIdeaResult{Idea: idea}, nil
		}
		return nil, err
	}

	h.publishEvents(ctx, stored)

	h.logger.Info("Idea created and analyzed",
		zap.String("ideaID", stored.ID().String()),
		zap.String("userID", cmd.UserID),
		zap.String("idea", stored.Content().Summary(80)),
		zap.String("provider", analysis.Provider()),
		zap.Float64("marketDemand", analysis.MarketDemand()),
	)

	return &CreateIdeaResult{Idea: stored}, nil
}

func (h *CreateIdeaHandler) publishEvents(ctx context.Context, idea *entities.Idea) {
	events := idea.GetUncommittedEvents()
	if len(events) == 0 {
		return
	}
	if err := h.eventBus.PublishBatch(ctx, events); err != nil {
		h.logger.Warn("Failed to publish domain events",
			zap.String("ideaID", idea.ID().String()),
			zap.Int("eventCount", len(events)),
			zap.Error(err),
		)
		return
	}
	idea.MarkEventsAsCommitted()
}
