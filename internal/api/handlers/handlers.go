// Package handlers implements the HTTP handlers for the sentrascan API:
// launching scans and reading the scan history.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sentrascan/sentrascan/internal/controller"
	"github.com/sentrascan/sentrascan/internal/store"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// Credentials are the per-request API key overrides a caller may supply on
// POST /scan. Empty fields fall back to the server configuration. They are
// consumed when the per-run agent registry is built and never stored.
type Credentials struct {
	SerpAPIKey string
	GeminiKey  string
	EmailPass  string
}

// ControllerFactory builds a fresh controller (and agent registry) for one
// scan run with the given credential overrides.
type ControllerFactory func(creds Credentials) *controller.Controller

// Handlers holds all handler dependencies.
type Handlers struct {
	Scans         store.ScanStore
	NewController ControllerFactory
}

// New creates a Handlers instance.
func New(scans store.ScanStore, factory ControllerFactory) *Handlers {
	return &Handlers{Scans: scans, NewController: factory}
}

type scanRequest struct {
	Query      string `json:"query"`
	SerpAPIKey string `json:"serpapi_key,omitempty"`
	GeminiKey  string `json:"gemini_key,omitempty"`
	EmailPass  string `json:"email_pass,omitempty"`
}

// Scan launches a full pipeline run for the submitted query. Soft stage
// failures still produce a success response; only request malformation and
// persistence failures are error responses.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, "Missing query")
		return
	}

	scanID := uuid.New().String()
	ctrl := h.NewController(Credentials{
		SerpAPIKey: req.SerpAPIKey,
		GeminiKey:  req.GeminiKey,
		EmailPass:  req.EmailPass,
	})

	results, err := ctrl.Run(r.Context(), req.Query, scanID)
	if err != nil {
		log.Error().Err(err).Str("scan_id", scanID).Msg("Scan persistence failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := map[string]any{"scan_id": scanID}
	for _, key := range models.StageKeys {
		response[key] = results[key]
	}
	respondJSON(w, http.StatusCreated, response)
}

// ListScans returns the scan history, most recent first.
func (h *Handlers) ListScans(w http.ResponseWriter, r *http.Request) {
	records, err := h.Scans.ListScans(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []models.ScanRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// GetScan returns one persisted scan record.
func (h *Handlers) GetScan(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "scanID")

	record, err := h.Scans.GetScan(r.Context(), scanID)
	if err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
