package handlers

import (
	"encoding/json"
	"net/http"

	"ideaforge-backend/application/queries"
	querybus "ideaforge-backend/application/queries/bus"
	"ideaforge-backend/pkg/auth"

	"go.uber.org/zap"
)

// DashboardHandler serves aggregate statistics over a user's ideas
type DashboardHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		queryBus: queryBus,
		logger:   logger,
	}
}

// GetStats handles GET /dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := queries.GetDashboardStatsQuery{
		UserID: userCtx.UserID,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to get dashboard stats",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve dashboard stats")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *DashboardHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *DashboardHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
