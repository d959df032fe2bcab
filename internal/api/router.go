package api

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	apiMiddleware "github.com/strefethen/crud-example/internal/api/middleware"
	"github.com/strefethen/crud-example/internal/api/shared"
	"github.com/strefethen/crud-example/internal/service"
	"github.com/strefethen/crud-example/internal/service/auth"
)

// RouterConfig holds the dependencies of the HTTP router.
type RouterConfig struct {
	Logger      *slog.Logger
	Items       service.ItemService
	Tasks       service.TaskService
	Events      EventSubscriber
	CORSOrigins []string

	// JWT enables bearer authentication and the session route. Nil leaves
	// every route open.
	JWT auth.JWTService
}

// Router is the application's HTTP handler.
type Router struct {
	chi.Router
	watch *WatchHandler
}

// Close ends open websocket watches.
func (rt *Router) Close() {
	rt.watch.Close()
}

// NewRouter creates the router with all routes and middleware.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Location", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	itemHandler := NewItemHandler(cfg.Items)
	taskHandler := NewTaskHandler(cfg.Tasks)
	watchHandler := NewWatchHandler(cfg.Tasks, cfg.Events, allowOrigins(origins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
	})

	if cfg.JWT != nil {
		r.Post("/sessions", NewSessionHandler(cfg.JWT).CreateSession)
	}

	r.Group(func(r chi.Router) {
		if cfg.JWT != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(cfg.JWT).Authenticate)
		}
		itemHandler.Routes(r)
		taskHandler.Routes(r)
		r.Get("/tasks/{id}/watch", watchHandler.Watch)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Route not found: "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed: "+r.Method)
	})

	return &Router{Router: r, watch: watchHandler}
}

// allowOrigins builds the websocket origin check from the CORS list.
func allowOrigins(origins []string) func(*http.Request) bool {
	if slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
