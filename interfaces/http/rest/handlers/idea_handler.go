package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"ideaforge-backend/application/commands"
	"ideaforge-backend/application/commands/bus"
	commands_handlers "ideaforge-backend/application/commands/handlers"
	"ideaforge-backend/application/queries"
	querybus "ideaforge-backend/application/queries/bus"
	"ideaforge-backend/pkg/auth"
	"ideaforge-backend/pkg/common"
	pkgerrors "ideaforge-backend/pkg/errors"
	"ideaforge-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IdeaHandler handles idea-related HTTP requests. Create and revalidate
// use their typed handlers directly because both return the stored idea
// (and create additionally reports the analysis outcome); update and
// delete dispatch through the command bus.
type IdeaHandler struct {
	commandBus     *bus.CommandBus
	queryBus       *querybus.QueryBus
	createIdea     *commands_handlers.CreateIdeaHandler
	revalidateIdea *commands_handlers.RevalidateIdeaHandler
	errors         *pkgerrors.ErrorHandler
	logger         *zap.Logger
}

// NewIdeaHandler creates a new idea handler
func NewIdeaHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	createIdea *commands_handlers.CreateIdeaHandler,
	revalidateIdea *commands_handlers.RevalidateIdeaHandler,
	logger *zap.Logger,
) *IdeaHandler {
	return &IdeaHandler{
		commandBus:     commandBus,
		queryBus:       queryBus,
		createIdea:     createIdea,
		revalidateIdea: revalidateIdea,
		errors:         pkgerrors.NewErrorHandler(logger, false),
		logger:         logger,
	}
}

// CreateIdeaRequest represents the request body for creating an idea
type CreateIdeaRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"required,max=10000"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	Provider    string   `json:"provider,omitempty" validate:"omitempty,oneof=openai gemini grok"`
}

// UpdateIdeaRequest represents the request body for updating an idea
type UpdateIdeaRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=10000"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// RevalidateIdeaRequest represents the request body for re-running analysis
type RevalidateIdeaRequest struct {
	Provider string `json:"provider,omitempty" validate:"omitempty,oneof=openai gemini grok"`
}

// AnalysisErrorView reports why an analysis pass failed. It carries the
// failure kind and whether retrying the same request can help; provider
// internals such as API keys never appear here.
type AnalysisErrorView struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// CreateIdeaResponse represents the response for creating an idea
type CreateIdeaResponse struct {
	Idea          *queries.IdeaView  `json:"idea"`
	AnalysisError *AnalysisErrorView `json:"analysisError,omitempty"`
}

// CreateIdea handles POST /ideas
func (h *IdeaHandler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	var req CreateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.CreateIdeaCommand{
		UserID:      userCtx.UserID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Provider:    req.Provider,
	}

	result, err := h.createIdea.Handle(r.Context(), cmd)
	if err != nil {
		h.logger.Error("Failed to create idea",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	view := queries.NewIdeaView(result.Idea)
	response := CreateIdeaResponse{
		Idea: &view,
	}
	if result.AnalysisError != nil {
		response.AnalysisError = &AnalysisErrorView{
			Type:      string(result.AnalysisError.Type),
			Message:   result.AnalysisError.Message,
			Retryable: result.AnalysisError.Retryable,
		}
	}

	// The idea is stored even when the analysis pass failed
	h.respondJSON(w, http.StatusCreated, response)
}

// GetIdea handles GET /ideas/{ideaID}
func (h *IdeaHandler) GetIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := chi.URLParam(r, "ideaID")
	if ideaID == "" {
		h.respondError(w, http.StatusBadRequest, "Idea ID is required")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := queries.GetIdeaQuery{
		UserID: userCtx.UserID,
		IdeaID: ideaID,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "Idea not found")
			return
		}
		h.logger.Error("Failed to get idea",
			zap.String("ideaID", ideaID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// UpdateIdea handles PUT /ideas/{ideaID}
func (h *IdeaHandler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := chi.URLParam(r, "ideaID")
	if ideaID == "" {
		h.respondError(w, http.StatusBadRequest, "Idea ID is required")
		return
	}

	var req UpdateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.UpdateIdeaCommand{
		IdeaID:      ideaID,
		UserID:      userCtx.UserID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		if pkgerrors.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "Idea not found")
			return
		}
		if pkgerrors.IsValidation(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to update idea",
			zap.String("ideaID", ideaID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	// Updates never re-trigger analysis; revalidation is a separate call
	h.respondJSON(w, http.StatusOK, map[string]string{
		"id":        ideaID,
		"message":   "Idea updated successfully",
		"updatedAt": utils.NowRFC3339(),
	})
}

// DeleteIdea handles DELETE /ideas/{ideaID}
func (h *IdeaHandler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := chi.URLParam(r, "ideaID")
	if ideaID == "" {
		h.respondError(w, http.StatusBadRequest, "Idea ID is required")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.DeleteIdeaCommand{
		IdeaID: ideaID,
		UserID: userCtx.UserID,
	}

	// Delete is idempotent, so an already-deleted idea still returns 204
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to delete idea",
			zap.String("ideaID", ideaID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListIdeas handles GET /ideas
func (h *IdeaHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	params := common.ExtractPaginationParams(r)

	var tags []string
	if raw := r.URL.Query().Get("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	var validated *bool
	if raw := r.URL.Query().Get("validated"); raw != "" {
		v, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid validated filter")
			return
		}
		validated = &v
	}

	query := queries.ListIdeasQuery{
		UserID:    userCtx.UserID,
		Search:    r.URL.Query().Get("search"),
		Tags:      tags,
		Validated: validated,
		SortBy:    params.Sort,
		SortDesc:  params.Order != "asc",
		Limit:     params.PageSize,
		Offset:    params.CalculateOffset(),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list ideas",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	listResult, ok := result.(*queries.ListIdeasResult)
	if !ok {
		h.respondError(w, http.StatusInternalServerError, "Unexpected query result")
		return
	}

	h.respondJSON(w, http.StatusOK, common.NewPaginatedResult(
		listResult.Ideas, params.Page, params.PageSize, listResult.Total))
}

// RevalidateIdea handles POST /ideas/{ideaID}/revalidate
func (h *IdeaHandler) RevalidateIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := chi.URLParam(r, "ideaID")
	if ideaID == "" {
		h.respondError(w, http.StatusBadRequest, "Idea ID is required")
		return
	}

	// The body is optional; an empty one means the default provider
	var req RevalidateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.RevalidateIdeaCommand{
		IdeaID:   ideaID,
		UserID:   userCtx.UserID,
		Provider: req.Provider,
	}

	idea, err := h.revalidateIdea.Handle(r.Context(), cmd)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "Idea not found")
			return
		}
		if appErr := pkgerrors.GetAppError(err); appErr != nil && pkgerrors.IsAnalysisFailure(err) {
			h.respondJSON(w, appErr.HTTPStatus, map[string]interface{}{
				"error": true,
				"analysisError": AnalysisErrorView{
					Type:      string(appErr.Type),
					Message:   appErr.Message,
					Retryable: appErr.Retryable,
				},
			})
			return
		}
		h.logger.Error("Failed to revalidate idea",
			zap.String("ideaID", ideaID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, queries.NewIdeaView(idea))
}

// Helper methods

func (h *IdeaHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *IdeaHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

