// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	custom_errors "github-digest-reporter/internal/errors"
	"github-digest-reporter/internal/model"
	"github-digest-reporter/internal/registry"
)

// Runner triggers one digest run.
type Runner interface {
	Run(ctx context.Context) error
}

// MemberRefresher triggers one membership refresh pass.
type MemberRefresher interface {
	RunOnce(ctx context.Context) error
}

// Handler is the container for API dependencies.
type Handler struct {
	source    registry.Source
	reporter  Runner
	refresher MemberRefresher
	logger    *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(source registry.Source, reporter Runner, refresher MemberRefresher, logger *slog.Logger) http.Handler {
	h := &Handler{
		source:    source,
		reporter:  reporter,
		refresher: refresher,
		logger:    logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/registrations", h.listRegistrations)
		r.Post("/registrations", h.upsertRegistration)
		r.Post("/reports/run", h.runReports)
		r.Post("/members/refresh", h.refreshMembers)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listRegistrations returns the current registry snapshot.
// GET /v1/registrations
func (h *Handler) listRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.source.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list registrations", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	respondWithJSON(w, http.StatusOK, regs)
}

// upsertRegistration creates or updates a registration. Membership fields are
// owned by the refresh job and ignored here.
// POST /v1/registrations
func (h *Handler) upsertRegistration(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := validateRegistration(reg); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.source.Upsert(r.Context(), reg); err != nil {
		h.logger.Error("Failed to upsert registration", "id", reg.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"id": reg.ID})
}

// runReports triggers one synchronous digest run.
// POST /v1/reports/run
func (h *Handler) runReports(w http.ResponseWriter, r *http.Request) {
	if err := h.reporter.Run(r.Context()); err != nil {
		h.logger.Error("Manual report run failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Report run failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// refreshMembers triggers one synchronous membership refresh pass.
// POST /v1/members/refresh
func (h *Handler) refreshMembers(w http.ResponseWriter, r *http.Request) {
	if err := h.refresher.RunOnce(r.Context()); err != nil {
		h.logger.Error("Manual membership refresh failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Membership refresh failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func validateRegistration(reg model.Registration) error {
	switch {
	case reg.ID == "":
		return &custom_errors.ErrInvalidRegistration{Field: "id"}
	case reg.Repo == "":
		return &custom_errors.ErrInvalidRegistration{Field: "repo"}
	case reg.Team == "":
		return &custom_errors.ErrInvalidRegistration{Field: "team"}
	case reg.Name == "":
		return &custom_errors.ErrInvalidRegistration{Field: "name"}
	case reg.Webhook == "":
		return &custom_errors.ErrInvalidRegistration{Field: "webhook"}
	}
	return nil
}
