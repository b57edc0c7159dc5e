// internal/api/handler.go
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"repo-browser/internal/browser"
	custom_errors "repo-browser/internal/errors"
	"repo-browser/internal/query"
)

// Handler is the container for API dependencies.
type Handler struct {
	list   *browser.ListSession
	detail *browser.DetailSession
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(list *browser.ListSession, detail *browser.DetailSession, logger *slog.Logger) http.Handler {
	h := &Handler{
		list:   list,
		detail: detail,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1/repositories", func(r chi.Router) {
		r.Get("/", h.listRepositories)
		r.Post("/refresh", h.refreshRepositories)
		r.Post("/more", h.loadMoreRepositories)
		r.Get("/{name}", h.getRepository)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listRepositories returns the derived list view, loading the first page on the first visit.
// GET /v1/repositories?q=&sort=&language=
func (h *Handler) listRepositories(w http.ResponseWriter, r *http.Request) {
	if err := h.list.EnsureLoaded(r.Context()); err != nil {
		h.respondWithUpstreamError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.list.View(queryFromRequest(r)))
}

// refreshRepositories forces a network fetch of the first page.
// POST /v1/repositories/refresh
func (h *Handler) refreshRepositories(w http.ResponseWriter, r *http.Request) {
	if err := h.list.Load(r.Context(), true); err != nil {
		h.respondWithUpstreamError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.list.View(queryFromRequest(r)))
}

// loadMoreRepositories appends the next page when one is available.
// POST /v1/repositories/more
func (h *Handler) loadMoreRepositories(w http.ResponseWriter, r *http.Request) {
	if err := h.list.LoadMore(r.Context()); err != nil {
		h.respondWithUpstreamError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.list.View(queryFromRequest(r)))
}

// getRepository returns the detail view of one repository.
// GET /v1/repositories/{name}
func (h *Handler) getRepository(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	d, err := h.detail.Select(r.Context(), name)
	if err != nil {
		if errors.Is(err, browser.ErrEmptyName) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondWithUpstreamError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

func (h *Handler) respondWithUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, custom_errors.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, custom_errors.Message(err))
		return
	}
	h.logger.Error("Upstream request failed", "error", err)
	respondWithError(w, http.StatusBadGateway, custom_errors.Message(err))
}

func queryFromRequest(r *http.Request) query.Query {
	q := r.URL.Query()
	return query.Query{
		SearchTerm:     q.Get("q"),
		SortBy:         query.ParseSortKey(q.Get("sort")),
		FilterLanguage: q.Get("language"),
	}
}
