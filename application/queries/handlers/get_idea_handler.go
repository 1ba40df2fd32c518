package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ideaforge-backend/application/ports"
	"ideaforge-backend/application/queries"
	"ideaforge-backend/domain/core/valueobjects"
)

// GetIdeaHandler handles single-idea queries
type GetIdeaHandler struct {
	ideaRepo ports.IdeaRepository
	logger   *zap.Logger
}

// NewGetIdeaHandler creates a new get idea handler
func NewGetIdeaHandler(ideaRepo ports.IdeaRepository, logger *zap.Logger) *GetIdeaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GetIdeaHandler{
		ideaRepo: ideaRepo,
		logger:   logger,
	}
}

// Handle executes the get idea query
func (h *GetIdeaHandler) Handle(ctx context.Context, query queries.GetIdeaQuery) (*queries.IdeaView, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	ideaID, err := valueobjects.NewIdeaIDFromString(query.IdeaID)
	if err != nil {
		return nil, fmt.Errorf("invalid idea ID: %w", err)
	}

	idea, err := h.ideaRepo.GetByID(ctx, query.UserID, ideaID)
	if err != nil {
		return nil, err
	}

	view := queries.NewIdeaView(idea)
	return &view, nil
}
