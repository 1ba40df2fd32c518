package rest

import (
	"net/http"

	"ideaforge-backend/application/commands/bus"
	commands_handlers "ideaforge-backend/application/commands/handlers"
	querybus "ideaforge-backend/application/queries/bus"
	"ideaforge-backend/interfaces/http/rest/handlers"
	"ideaforge-backend/interfaces/http/rest/middleware"
	"ideaforge-backend/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus     *bus.CommandBus
	queryBus       *querybus.QueryBus
	createIdea     *commands_handlers.CreateIdeaHandler
	revalidateIdea *commands_handlers.RevalidateIdeaHandler
	jwtValidator   *auth.JWTValidator
	tokenRefresh   *middleware.TokenRefreshMiddleware
	logger         *zap.Logger
}

// NewRouter creates a new router instance. tokenRefresh may be nil, in
// which case the refresh endpoint is not mounted.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	createIdea *commands_handlers.CreateIdeaHandler,
	revalidateIdea *commands_handlers.RevalidateIdeaHandler,
	jwtValidator *auth.JWTValidator,
	tokenRefresh *middleware.TokenRefreshMiddleware,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:     commandBus,
		queryBus:       queryBus,
		createIdea:     createIdea,
		revalidateIdea: revalidateIdea,
		jwtValidator:   jwtValidator,
		tokenRefresh:   tokenRefresh,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(versionMiddleware)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.ideaforge.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// Token refresh stays outside the authenticated group so expired
	// tokens can reach it
	if rt.tokenRefresh != nil {
		router.Post("/api/v1/auth/refresh", rt.tokenRefresh.RefreshToken)
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		// In Lambda the API Gateway authorizer has already validated
		// the token; locally it is validated here
		r.Use(middleware.Authenticate(rt.jwtValidator, rt.logger))

		// Idea endpoints
		r.Route("/ideas", func(r chi.Router) {
			ideaHandler := handlers.NewIdeaHandler(rt.commandBus, rt.queryBus, rt.createIdea, rt.revalidateIdea, rt.logger)
			r.Post("/", ideaHandler.CreateIdea)
			r.Get("/", ideaHandler.ListIdeas)
			r.Get("/{ideaID}", ideaHandler.GetIdea)
			r.Put("/{ideaID}", ideaHandler.UpdateIdea)
			r.Delete("/{ideaID}", ideaHandler.DeleteIdea)
			r.Post("/{ideaID}/revalidate", ideaHandler.RevalidateIdea)
		})

		// Dashboard endpoints
		r.Route("/dashboard", func(r chi.Router) {
			dashboardHandler := handlers.NewDashboardHandler(rt.queryBus, rt.logger)
			r.Get("/stats", dashboardHandler.GetStats)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		next.ServeHTTP(w, r)
	})
}
