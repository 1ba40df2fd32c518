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
	"ideaforge-backend/infrastructure/persistence/dynamodb"
	pkgerrors "ideaforge-backend/pkg/errors"
)

// RevalidateIdeaHandler re-runs AI analysis against an idea's current
// fields and replaces any existing analysis. Failures propagate to the
// caller unchanged so the retryable kinds stay distinguishable; the idea
// keeps its prior analysis state.
type RevalidateIdeaHandler struct {
	ideaRepo     ports.IdeaRepository
	analyzer     ports.Analyzer
	eventBus     ports.EventBus
	metrics      ports.AnalysisMetrics
	analysisLock *dynamodb.DistributedLock
	domainCfg    *config.DomainConfig
	logger       *zap.Logger
}

// NewRevalidateIdeaHandler creates a new revalidate idea handler.
// metrics may be nil, in which case analysis attempts are not recorded.
// analysisLock may be nil, in which case concurrent revalidations of
// the same idea are not serialized.
func NewRevalidateIdeaHandler(
	ideaRepo ports.IdeaRepository,
	analyzer ports.Analyzer,
	eventBus ports.EventBus,
	metrics ports.AnalysisMetrics,
	analysisLock *dynamodb.DistributedLock,
	domainCfg *config.DomainConfig,
	logger *zap.Logger,
) *RevalidateIdeaHandler {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevalidateIdeaHandler{
		ideaRepo:     ideaRepo,
		analyzer:     analyzer,
		eventBus:     eventBus,
		metrics:      metrics,
		analysisLock: analysisLock,
		domainCfg:    domainCfg,
		logger:       logger,
	}
}

// Handle executes the revalidate idea command and returns the idea with
// its fresh analysis attached
func (h *RevalidateIdeaHandler) Handle(ctx context.Context, cmd commands.RevalidateIdeaCommand) (*entities.Idea, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	ideaID, err := valueobjects.NewIdeaIDFromString(cmd.IdeaID)
	if err != nil {
		return nil, fmt.Errorf("invalid idea ID: %w", err)
	}

	idea, err := h.ideaRepo.GetByID(ctx, cmd.UserID, ideaID)
	if err != nil {
		return nil, err
	}

	// Serialize revalidations of the same idea so two concurrent
	// requests don't clobber each other's analysis
	if h.analysisLock != nil {
		lockResource := fmt.Sprintf("idea_analysis_%s", cmd.IdeaID)
		lockDuration := h.domainCfg.AnalysisTimeout + 5*time.Second
		lockTimeout := 5 * time.Second

		lock, lockErr := h.analysisLock.TryAcquireLock(ctx, lockResource, cmd.UserID, lockDuration, lockTimeout)
		if lockErr != nil {
			return nil, fmt.Errorf("failed to acquire analysis lock: %w", lockErr)
		}
		defer func() {
			if releaseErr := lock.Release(ctx); releaseErr != nil {
				h.logger.Error("Failed to release analysis lock",
					zap.String("resource", lockResource),
					zap.Error(releaseErr),
				)
			}
		}()
	}

	analysisCtx, cancel := context.WithTimeout(ctx, h.domainCfg.AnalysisTimeout)
	defer cancel()

	analysisStart := time.Now()
	analysis, err := h.analyzer.Analyze(analysisCtx, ports.AnalysisRequest{
		Title:       idea.Content().Title(),
		Description: idea.Content().Description(),
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

		h.logger.Warn("Revalidation failed",
			zap.String("ideaID", cmd.IdeaID),
			zap.String("userID", cmd.UserID),
			zap.String("errorType", string(appErr.Type)),
			zap.Bool("retryable", appErr.Retryable),
		)

		idea.RecordAnalysisFailure(cmd.Provider, appErr.Message, appErr.Retryable)
		h.publishEvents(ctx, idea)

		return nil, appErr
	}

	// The idea may have been deleted while the provider was working;
	// treat that as a no-op and discard the result
	stored, err := h.ideaRepo.GetByID(ctx, cmd.UserID, ideaID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			h.logger.Info("Idea deleted during revalidation, discarding result",
				zap.String("ideaID", cmd.IdeaID),
			)
			return idea, nil
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
			h.logger.Info("Idea deleted during revalidation, discarding result",
				zap.String("ideaID", cmd.IdeaID),
			)
			return idea, nil
		}
		return nil, err
	}

	h.publishEvents(ctx, stored)

	h.logger.Info("Idea revalidated",
		zap.String("ideaID", cmd.IdeaID),
		zap.String("userID", cmd.UserID),
		zap.String("provider", analysis.Provider()),
	)

	return stored, nil
}

func (h *RevalidateIdeaHandler) publishEvents(ctx context.Context, idea *entities.Idea) {
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
