// Package api exposes the HTTP and MCP surfaces of the recommendation
// service: ingest, recommendations, item management, preferences, and
// read-only scoring introspection.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/unwindhq/unwind/internal/content"
	"github.com/unwindhq/unwind/internal/ingest"
	"github.com/unwindhq/unwind/internal/mood"
	"github.com/unwindhq/unwind/internal/prefs"
	"github.com/unwindhq/unwind/internal/recommend"
	"github.com/unwindhq/unwind/internal/storage"
)

const maxRequestBodySize = 1 << 20  // 1MB
const maxBatchBodySize = 10 << 20   // 10MB

// IngestRequest carries one raw provider record.
type IngestRequest struct {
	Provider string            `json:"provider"`
	Record   content.RawRecord `json:"record"`
}

// BatchIngestRequest carries a batch destined for the background worker.
type BatchIngestRequest struct {
	Provider string              `json:"provider"`
	Records  []content.RawRecord `json:"records"`
}

// Deps holds the handler's collaborators.
type Deps struct {
	Store      *storage.Store
	Prefs      *prefs.Manager
	Engine     *recommend.Engine
	Normalizer *content.Normalizer
	Token      string
}

// NewHandler builds the full router: /health is public, everything else
// requires the bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/ingest", handleIngest(deps))
		r.Post("/ingest/batch", handleIngestBatch(deps))
		r.Post("/recommendations", handleRecommendations(deps))
		r.Get("/items", handleListItems(deps))
		r.Get("/items/{id}", handleGetItem(deps))
		r.Delete("/items/{id}", handleDeleteItem(deps))
		r.Get("/preferences", handleGetPreferences(deps))
		r.Patch("/preferences", handlePatchPreferences(deps))
		r.Get("/profiles/{state}", handleGetProfile)
		r.Get("/focus-multipliers", handleFocusMultipliers)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleIngest normalizes a single record inline and caches the item, so the
// caller learns immediately whether the record was usable.
func handleIngest(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Provider == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "provider is required")
			return
		}

		item, err := deps.Normalizer.Normalize(req.Record, content.Provider(req.Provider))
		if errors.Is(err, content.ErrMissingIdentifier) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "record rejected: %v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "normalization failed: %v", err)
			return
		}

		if err := deps.Store.SaveItem(item); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save item: %v", err)
			return
		}

		writeJSON(w, map[string]string{"id": item.ID, "status": "cached"})
	}
}

func handleIngestBatch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBatchBodySize)
		defer r.Body.Close()

		var req BatchIngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Provider == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "provider is required")
			return
		}
		if len(req.Records) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "records must not be empty")
			return
		}

		payload, err := json.Marshal(ingest.BatchPayload{Provider: req.Provider, Records: req.Records})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create job payload: %v", err)
			return
		}

		job := storage.Job{
			ID:          uuid.New().String(),
			Type:        ingest.JobType,
			PayloadJSON: string(payload),
		}
		if err := deps.Store.EnqueueJob(job); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to enqueue job: %v", err)
			return
		}

		w.WriteHeader(http.StatusAccepted)
		writeJSON(w, map[string]string{"job_id": job.ID, "status": "queued"})
	}
}

func handleRecommendations(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req recommend.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if _, err := mood.ParseState(string(req.State)); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		if _, err := mood.ParseFocus(string(req.Focus)); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		pool, err := deps.Store.AllItems()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load candidate pool: %v", err)
			return
		}

		userPrefs, err := deps.Prefs.GetPreferences()
		if err != nil {
			slog.Warn("loading preferences failed, using defaults", "error", err)
			userPrefs = content.Preferences{}
		}

		result, err := deps.Engine.Generate(r.Context(), req, pool, userPrefs)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "recommendation failed: %v", err)
			return
		}

		slog.Debug("recommendations generated",
			"state", req.State,
			"focus", req.Focus,
			"candidates", result.TotalCandidates,
			"returned", len(result.Recommendations),
		)
		writeJSON(w, result)
	}
}

func handleListItems(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		offset := parseIntParam(r, "offset", 0, 0)

		items, err := deps.Store.ListItems(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list items: %v", err)
			return
		}
		if items == nil {
			items = []content.Item{}
		}
		writeJSON(w, items)
	}
}

func handleGetItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		item, err := deps.Store.GetItem(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "item not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get item: %v", err)
			return
		}
		writeJSON(w, item)
	}
}

func handleDeleteItem(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := deps.Store.DeleteItem(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "item not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete item: %v", err)
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"})
	}
}

func handleGetPreferences(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Prefs.GetPreferences()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get preferences: %v", err)
			return
		}
		writeJSON(w, p)
	}
}

func handlePatchPreferences(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var fields map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		for key, value := range fields {
			if err := deps.Prefs.SetField(key, value); err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "failed to set field %q: %v", key, err)
				return
			}
		}

		writeJSON(w, map[string]string{"status": "updated"})
	}
}

func handleGetProfile(w http.ResponseWriter, r *http.Request) {
	state, err := mood.ParseState(chi.URLParam(r, "state"))
	if err != nil {
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
		return
	}
	writeJSON(w, mood.ProfileOf(state))
}

func handleFocusMultipliers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, mood.FocusMultipliers())
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
