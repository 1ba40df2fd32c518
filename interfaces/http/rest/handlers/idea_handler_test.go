package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaforge-backend/application/commands"
	"ideaforge-backend/application/commands/bus"
	commands_handlers "ideaforge-backend/application/commands/handlers"
	"ideaforge-backend/application/ports"
	"ideaforge-backend/application/queries"
	querybus "ideaforge-backend/application/queries/bus"
	queries_handlers "ideaforge-backend/application/queries/handlers"
	"ideaforge-backend/domain/core/entities"
	"ideaforge-backend/domain/core/valueobjects"
	"ideaforge-backend/domain/events"
	"ideaforge-backend/pkg/auth"
	pkgerrors "ideaforge-backend/pkg/errors"
)

// Test doubles wired exactly as the container wires the real ones,
// with the DynamoDB repository swapped for an in-memory map.

type stubRepo struct {
	mu    sync.Mutex
	ideas map[string]*entities.Idea
}

func newStubRepo() *stubRepo {
	return &stubRepo{ideas: make(map[string]*entities.Idea)}
}

func (r *stubRepo) Save(ctx context.Context, idea *entities.Idea) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ideas[idea.ID().String()] = idea
	return nil
}

func (r *stubRepo) GetByID(ctx context.Context, userID string, id valueobjects.IdeaID) (*entities.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idea, ok := r.ideas[id.String()]
	if !ok || idea.UserID() != userID {
		return nil, pkgerrors.NewNotFoundError("idea")
	}
	return idea, nil
}

func (r *stubRepo) GetByUserID(ctx context.Context, userID string) ([]*entities.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Idea
	for _, idea := range r.ideas {
		if idea.UserID() == userID {
			out = append(out, idea)
		}
	}
	return out, nil
}

func (r *stubRepo) Delete(ctx context.Context, userID string, id valueobjects.IdeaID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idea, ok := r.ideas[id.String()]; ok && idea.UserID() == userID {
		delete(r.ideas, id.String())
	}
	return nil
}

func (r *stubRepo) Search(ctx context.Context, criteria ports.SearchCriteria) ([]*entities.Idea, error) {
	ideas, _ := r.GetByUserID(ctx, criteria.UserID)
	var out []*entities.Idea
	for _, idea := range ideas {
		if criteria.Query != "" && !idea.MatchesText(criteria.Query) {
			continue
		}
		if criteria.Validated != nil && idea.IsValidated() != *criteria.Validated {
			continue
		}
		out = append(out, idea)
	}
	return out, nil
}

type fixedAnalyzer struct {
	analysis valueobjects.Analysis
	err      error
}

func (a *fixedAnalyzer) Analyze(ctx context.Context, req ports.AnalysisRequest) (valueobjects.Analysis, error) {
	if a.err != nil {
		return valueobjects.Analysis{}, a.err
	}
	return a.analysis, nil
}

func (a *fixedAnalyzer) Providers() []string { return []string{"gemini"} }

type nopEventBus struct{}

func (nopEventBus) Publish(ctx context.Context, event events.DomainEvent) error         { return nil }
func (nopEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error  { return nil }
func (nopEventBus) Subscribe(eventType string, handler ports.EventHandler) error        { return nil }
func (nopEventBus) Unsubscribe(eventType string, handler ports.EventHandler) error      { return nil }

func passingAnalysis(t *testing.T) valueobjects.Analysis {
	t.Helper()
	analysis, err := valueobjects.NewAnalysis(
		8,
		"Two incumbents, both desktop-only.",
		[]string{"Go", "React"},
		[]string{"Browser extension"},
		valueobjects.MRRProjection{Min: 500, Max: 6000},
		valueobjects.EffortEstimation{Months: 3, TeamSize: 2},
		"gemini",
		time.Now(),
	)
	require.NoError(t, err)
	return analysis
}

// newTestRouter builds the handler stack over the fakes and mounts it
// behind a middleware that injects the authenticated user
func newTestRouter(t *testing.T, repo ports.IdeaRepository, analyzer ports.Analyzer, userID string) http.Handler {
	t.Helper()

	eventBus := nopEventBus{}

	createHandler := commands_handlers.NewCreateIdeaHandler(repo, analyzer, eventBus, nil, nil, nil)
	revalidateHandler := commands_handlers.NewRevalidateIdeaHandler(repo, analyzer, eventBus, nil, nil, nil, nil)

	commandBus := bus.NewCommandBus()
	updateHandler := commands_handlers.NewUpdateIdeaHandler(repo, eventBus, nil, nil)
	require.NoError(t, commandBus.Register(commands.UpdateIdeaCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return updateHandler.Handle(ctx, cmd.(commands.UpdateIdeaCommand))
		})))
	deleteHandler := commands_handlers.NewDeleteIdeaHandler(repo, eventBus, nil)
	require.NoError(t, commandBus.Register(commands.DeleteIdeaCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return deleteHandler.Handle(ctx, cmd.(commands.DeleteIdeaCommand))
		})))

	queryBus := querybus.NewQueryBus()
	getHandler := queries_handlers.NewGetIdeaHandler(repo, nil)
	require.NoError(t, queryBus.Register(queries.GetIdeaQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			return getHandler.Handle(ctx, query.(queries.GetIdeaQuery))
		})))
	listHandler := queries_handlers.NewListIdeasHandler(repo, nil)
	require.NoError(t, queryBus.Register(queries.ListIdeasQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			return listHandler.Handle(ctx, query.(queries.ListIdeasQuery))
		})))
	statsHandler := queries_handlers.NewGetDashboardStatsHandler(repo, nil)
	require.NoError(t, queryBus.Register(queries.GetDashboardStatsQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			return statsHandler.Handle(ctx, query.(queries.GetDashboardStatsQuery))
		})))

	logger := zap.NewNop()
	ideaHandler := NewIdeaHandler(commandBus, queryBus, createHandler, revalidateHandler, logger)
	dashboardHandler := NewDashboardHandler(queryBus, logger)

	r := chi.NewRouter()
	if userID != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := auth.SetUserInContext(req.Context(), &auth.UserContext{
					UserID: userID,
					Email:  userID + "@example.com",
					Roles:  []string{"authenticated"},
				})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}

	r.Route("/ideas", func(r chi.Router) {
		r.Post("/", ideaHandler.CreateIdea)
		r.Get("/", ideaHandler.ListIdeas)
		r.Get("/{ideaID}", ideaHandler.GetIdea)
		r.Put("/{ideaID}", ideaHandler.UpdateIdea)
		r.Delete("/{ideaID}", ideaHandler.DeleteIdea)
		r.Post("/{ideaID}/revalidate", ideaHandler.RevalidateIdea)
	})
	r.Get("/dashboard/stats", dashboardHandler.GetStats)

	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func seedStoredIdea(t *testing.T, repo *stubRepo, userID string, analysis *valueobjects.Analysis) *entities.Idea {
	t.Helper()
	content, err := valueobjects.NewIdeaContent("Stored idea", "Already persisted")
	require.NoError(t, err)
	idea, err := entities.NewIdea(userID, content, []string{"seed"})
	require.NoError(t, err)
	if analysis != nil {
		require.NoError(t, idea.AttachAnalysis(*analysis))
	}
	idea.MarkEventsAsCommitted()
	require.NoError(t, repo.Save(context.Background(), idea))
	return idea
}

func TestCreateIdeaEndpoint(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(t, repo, &fixedAnalyzer{analysis: passingAnalysis(t)}, "user-1")

	rec := doJSON(t, router, http.MethodPost, "/ideas", map[string]interface{}{
		"title":       "Receipt scanner",
		"description": "OCR receipts into expense reports",
		"tags":        []string{"fintech"},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)

	idea, ok := body["idea"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Receipt scanner", idea["title"])
	assert.Equal(t, true, idea["validated"])
	assert.NotNil(t, idea["analysis"])
	assert.NotContains(t, body, "analysisError")
}

func TestCreateIdeaEndpointAnalysisFailureStillStores(t *testing.T) {
	repo := newStubRepo()
	analyzer := &fixedAnalyzer{err: pkgerrors.NewProviderUnavailableError("gemini", assert.AnError)}
	router := newTestRouter(t, repo, analyzer, "user-1")

	rec := doJSON(t, router, http.MethodPost, "/ideas", map[string]interface{}{
		"title":       "Receipt scanner",
		"description": "OCR receipts into expense reports",
	})

	// Stored without analysis; the failure is reported alongside
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)

	idea := body["idea"].(map[string]interface{})
	assert.Equal(t, false, idea["validated"])

	analysisErr, ok := body["analysisError"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "PROVIDER_UNAVAILABLE", analysisErr["type"])
	assert.Equal(t, true, analysisErr["retryable"])

	ideas, err := repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, ideas, 1)
}

func TestCreateIdeaEndpointValidation(t *testing.T) {
	router := newTestRouter(t, newStubRepo(), &fixedAnalyzer{}, "user-1")

	rec := doJSON(t, router, http.MethodPost, "/ideas", map[string]interface{}{
		"description": "missing title",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/ideas", map[string]interface{}{
		"title":       "Title",
		"description": "Description",
		"provider":    "claude",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateIdeaEndpointUnauthenticated(t *testing.T) {
	router := newTestRouter(t, newStubRepo(), &fixedAnalyzer{}, "")

	rec := doJSON(t, router, http.MethodPost, "/ideas", map[string]interface{}{
		"title":       "Title",
		"description": "Description",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetIdeaEndpoint(t *testing.T) {
	repo := newStubRepo()
	analysis := passingAnalysis(t)
	idea := seedStoredIdea(t, repo, "user-1", &analysis)
	router := newTestRouter(t, repo, &fixedAnalyzer{}, "user-1")

	rec := doJSON(t, router, http.MethodGet, "/ideas/"+idea.ID().String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Stored idea", body["title"])
	assert.NotNil(t, body["analysis"])
}

func TestGetIdeaEndpointUnownedIsNotFound(t *testing.T) {
	repo := newStubRepo()
	idea := seedStoredIdea(t, repo, "user-1", nil)
	router := newTestRouter(t, repo, &fixedAnalyzer{}, "user-2")

	rec := doJSON(t, router, http.MethodGet, "/ideas/"+idea.ID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateIdeaEndpoint(t *testing.T) {
	repo := newStubRepo()
	idea := seedStoredIdea(t, repo, "user-1", nil)
	router := newTestRouter(t, repo, &fixedAnalyzer{}, "user-1")

	rec := doJSON(t, router, http.MethodPut, "/ideas/"+idea.ID().String(), map[string]interface{}{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := repo.GetByID(context.Background(), "user-1", idea.ID())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Content().Title())
}

func TestUpdateIdeaEndpointNotFound(t *testing.T) {
	router := newTestRouter(t, newStubRepo(), &fixedAnalyzer{}, "user-1")

	rec := doJSON(t, router, http.MethodPut, "/ideas/"+valueobjects.NewIdeaID().String(), map[string]interface{}{
		"title": "Renamed",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteIdeaEndpointIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	idea := seedStoredIdea(t, repo, "user-1", nil)
	router := newTestRouter(t, repo, &fixedAnalyzer{}, "user-1")

	path := "/ideas/" + idea.ID().String()
	rec := doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListIdeasEndpoint(t *testing.T) {
	repo := newStubRepo()
	seedStoredIdea(t, repo, "user-1", nil)
	analysis := passingAnalysis(t)
	seedStoredIdea(t, repo, "user-1", &analysis)
	seedStoredIdea(t, repo, "user-2", nil)

	router := newTestRouter(t, repo, &fixedAnalyzer{}, "user-1")

	rec := doJSON(t, router, http.MethodGet, "/ideas?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	items, ok := body["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)

	pagination, ok := body["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, float64(1), pagination["page"])
}

func TestListIdeasEndpointValidatedFilter(t *testing.T) {
	repo := newStubRepo()
	seedStoredIdea(t, repo, "user-1", nil)
	analysis := passingAnalysis(t)
	seedStoredIdea(t, repo, "user-1", &analysis)

	router := newTestRouter(t, repo, &fixedAnalyzer{}, "user-1")

	rec := doJSON(t, router, http.MethodGet, "/ideas?validated=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["items"].([]interface{}), 1)

	rec = doJSON(t, router, http.MethodGet, "/ideas?validated=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevalidateIdeaEndpoint(t *testing.T) {
	repo := newStubRepo()
	idea := seedStoredIdea(t, repo, "user-1", nil)
	router := newTestRouter(t, repo, &fixedAnalyzer{analysis: passingAnalysis(t)}, "user-1")

	// Empty body means the default provider
	req := httptest.NewRequest(http.MethodPost, "/ideas/"+idea.ID().String()+"/revalidate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["validated"])
	assert.NotNil(t, body["analysis"])
}

func TestRevalidateIdeaEndpointFailure(t *testing.T) {
	repo := newStubRepo()
	idea := seedStoredIdea(t, repo, "user-1", nil)
	analyzer := &fixedAnalyzer{err: pkgerrors.NewUnparsableResponseError("gemini")}
	router := newTestRouter(t, repo, analyzer, "user-1")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/ideas/%s/revalidate", idea.ID().String()), nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)

	analysisErr, ok := body["analysisError"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "UNPARSABLE_RESPONSE", analysisErr["type"])
	assert.Equal(t, false, analysisErr["retryable"])
}

func TestRevalidateIdeaEndpointNotFound(t *testing.T) {
	router := newTestRouter(t, newStubRepo(), &fixedAnalyzer{analysis: passingAnalysis(t)}, "user-1")

	rec := doJSON(t, router, http.MethodPost, "/ideas/"+valueobjects.NewIdeaID().String()+"/revalidate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardStatsEndpoint(t *testing.T) {
	repo := newStubRepo()
	analysis := passingAnalysis(t)
	seedStoredIdea(t, repo, "user-1", &analysis)
	seedStoredIdea(t, repo, "user-1", nil)

	router := newTestRouter(t, repo, &fixedAnalyzer{}, "user-1")

	rec := doJSON(t, router, http.MethodGet, "/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["totalIdeas"])
	assert.Equal(t, float64(1), body["validatedIdeas"])
	assert.Equal(t, float64(1), body["unvalidatedIdeas"])
}
