package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/amithcabraal/pt-dashboard-28/pkg/model"
	"github.com/amithcabraal/pt-dashboard-28/pkg/persist"
	"github.com/go-chi/chi/v5"
)

// maxBodySize caps request bodies; import payloads are JSON documents,
// not bulk data.
const maxBodySize = 10 << 20

// errorResponse is a standard error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

// handleHealth returns server health status.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTests returns the collection in display order together with
// the persisted lastUpdated timestamp.
func (s *server) handleListTests(w http.ResponseWriter, r *http.Request) {
	lastUpdated, err := s.tracker.LastUpdated(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to read collection")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	resp := map[string]any{
		"tests": s.tracker.Sorted(),
	}

	if lastUpdated != "" {
		resp["lastUpdated"] = lastUpdated
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetTest returns a single test by ID.
func (s *server) handleGetTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	test, found := s.tracker.Get(id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{"test not found"})

		return
	}

	writeJSON(w, http.StatusOK, test)
}

// handleCreateTest creates a new test from the given partial fields.
func (s *server) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	var fields model.TestUpdate
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"invalid request body"})

		return
	}

	created, err := s.tracker.CreateTest(r.Context(), fields)
	if err != nil {
		s.log.WithError(err).Error("Failed to create test")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateTest merges partial fields over an existing test.
// Unknown IDs do not mutate anything; the tracker treats them as a
// no-op and the API reports 404.
func (s *server) handleUpdateTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields model.TestUpdate
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"invalid request body"})

		return
	}

	found, err := s.tracker.UpdateTest(r.Context(), id, fields)
	if err != nil {
		s.log.WithError(err).Error("Failed to update test")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{"test not found"})

		return
	}

	test, _ := s.tracker.Get(id)
	writeJSON(w, http.StatusOK, test)
}

// handleDeleteTest removes a test by ID.
func (s *server) handleDeleteTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := s.tracker.DeleteTest(r.Context(), id)
	if err != nil {
		s.log.WithError(err).Error("Failed to delete test")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{"test not found"})

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAddRun appends a run to a test.
func (s *server) handleAddRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"invalid request body"})

		return
	}

	run, found, err := s.tracker.AddRun(r.Context(), id, fields)
	if err != nil {
		s.log.WithError(err).Error("Failed to add run")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{"test not found"})

		return
	}

	writeJSON(w, http.StatusCreated, run)
}

// handleUpdateRun replaces a run's fields, keeping its ID.
func (s *server) handleUpdateRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	runID := chi.URLParam(r, "runID")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"invalid request body"})

		return
	}

	found, err := s.tracker.UpdateRun(r.Context(), id, runID, fields)
	if err != nil {
		s.log.WithError(err).Error("Failed to update run")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{"run not found"})

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteRun removes a run from a test.
func (s *server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	runID := chi.URLParam(r, "runID")

	found, err := s.tracker.DeleteRun(r.Context(), id, runID)
	if err != nil {
		s.log.WithError(err).Error("Failed to delete run")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{"run not found"})

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleImport replaces the whole collection from an uploaded JSON
// document. Parse failures leave prior state untouched.
func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"reading request body"})

		return
	}

	if err := s.tracker.Import(r.Context(), data); err != nil {
		var derr *persist.DeserializationError
		if errors.As(err, &derr) {
			writeJSON(w, http.StatusBadRequest,
				errorResponse{"invalid import document"})

			return
		}

		s.log.WithError(err).Error("Failed to import collection")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(s.tracker.Tests()),
	})
}

// handleExport streams the current collection as a pretty-printed JSON
// download.
func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.tracker.ExportJSON(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to export collection")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.log.WithError(err).Warn("Failed to write export response")
	}
}
