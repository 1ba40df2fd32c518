package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ideaforge-backend/application/commands"
	"ideaforge-backend/application/ports"
	"ideaforge-backend/domain/config"
	"ideaforge-backend/domain/core/valueobjects"
)

// UpdateIdeaHandler handles idea update commands. Updates merge the
// provided fields into the stored record; the attached analysis is left
// untouched.
type UpdateIdeaHandler struct {
	ideaRepo  ports.IdeaRepository
	eventBus  ports.EventBus
	domainCfg *config.DomainConfig
	logger    *zap.Logger
}

// NewUpdateIdeaHandler creates a new update idea handler
func NewUpdateIdeaHandler(
	ideaRepo ports.IdeaRepository,
	eventBus ports.EventBus,
	domainCfg *config.DomainConfig,
	logger *zap.Logger,
) *UpdateIdeaHandler {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateIdeaHandler{
		ideaRepo:  ideaRepo,
		eventBus:  eventBus,
		domainCfg: domainCfg,
		logger:    logger,
	}
}

// Handle executes the update idea command
func (h *UpdateIdeaHandler) Handle(ctx context.Context, cmd commands.UpdateIdeaCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	ideaID, err := valueobjects.NewIdeaIDFromString(cmd.IdeaID)
	if err != nil {
		return fmt.Errorf("invalid idea ID: %w", err)
	}

	// GetByID is owner-scoped: an unowned idea surfaces as not found
	idea, err := h.ideaRepo.GetByID(ctx, cmd.UserID, ideaID)
	if err != nil {
		return err
	}

	if cmd.Title != nil || cmd.Description != nil {
		title := idea.Content().Title()
		description := idea.Content().Description()

		if cmd.Title != nil {
			title = *cmd.Title
		}
		if cmd.Description != nil {
			description = *cmd.Description
		}

		newContent, err := valueobjects.NewIdeaContentWithConfig(title, description, h.domainCfg)
		if err != nil {
			return err
		}

		if err := idea.UpdateContent(newContent); err != nil {
			return err
		}
	}

	if cmd.Tags != nil {
		if err := idea.SetTagsWithConfig(*cmd.Tags, h.domainCfg); err != nil {
			return err
		}
	}

	if err := h.ideaRepo.Save(ctx, idea); err != nil {
		return err
	}

	for _, event := range idea.GetUncommittedEvents() {
		if err := h.eventBus.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish event",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
		}
	}
	idea.MarkEventsAsCommitted()

	h.logger.Info("Idea updated",
		zap.String("ideaID", cmd.IdeaID),
		zap.String("userID", cmd.UserID),
	)

	return nil
}
