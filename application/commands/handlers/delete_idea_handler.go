package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ideaforge-backend/application/commands"
	"ideaforge-backend/application/ports"
	"ideaforge-backend/domain/core/valueobjects"
	pkgerrors "ideaforge-backend/pkg/errors"
)

// DeleteIdeaHandler handles idea deletion. Deletion is idempotent:
// a second delete of the same id succeeds without effect.
type DeleteIdeaHandler struct {
	ideaRepo ports.IdeaRepository
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewDeleteIdeaHandler creates a new delete idea handler
func NewDeleteIdeaHandler(
	ideaRepo ports.IdeaRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *DeleteIdeaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeleteIdeaHandler{
		ideaRepo: ideaRepo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Handle executes the delete idea command
func (h *DeleteIdeaHandler) Handle(ctx context.Context, cmd commands.DeleteIdeaCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	ideaID, err := valueobjects.NewIdeaIDFromString(cmd.IdeaID)
	if err != nil {
		return fmt.Errorf("invalid idea ID: %w", err)
	}

	idea, err := h.ideaRepo.GetByID(ctx, cmd.UserID, ideaID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			h.logger.Debug("Delete of missing idea is a no-op",
				zap.String("ideaID", cmd.IdeaID),
				zap.String("userID", cmd.UserID),
			)
			return nil
		}
		return err
	}

	if err := h.ideaRepo.Delete(ctx, cmd.UserID, ideaID); err != nil {
		return err
	}

	idea.RecordDeletion()
	for _, event := range idea.GetUncommittedEvents() {
		if err := h.eventBus.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish event",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
		}
	}
	idea.MarkEventsAsCommitted()

	h.logger.Info("Idea deleted",
		zap.String("ideaID", cmd.IdeaID),
		zap.String("userID", cmd.UserID),
	)

	return nil
}
