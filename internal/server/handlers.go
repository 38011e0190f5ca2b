package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rafael/certificate-automator/internal/ingestion"
	"github.com/rafael/certificate-automator/internal/pipeline"
	"github.com/rafael/certificate-automator/internal/schemas"
	"github.com/rafael/certificate-automator/internal/types"
)

// handleSubmission receives a form submission webhook, validates it against
// the payload schema and runs it through the pipeline.
func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Cannot read request body")
		return
	}

	if err := schemas.ValidateSubmission(payload); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			s.errorResponse(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid payload: "+err.Error())
		return
	}

	var event ingestion.FormEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	runner, err := s.newRunner(s.store.Snapshot())
	if err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Pipeline unavailable: "+err.Error())
		return
	}

	sub := ingestion.Normalize(event, time.Now())
	outcome := runner.ProcessSubmission(r.Context(), sub)

	status := http.StatusOK
	if outcome.Status == types.StatusFailed {
		status = http.StatusUnprocessableEntity
	}
	s.jsonResponse(w, status, outcome)
}

type batchRequest struct {
	Rows       []int64 `json:"rows"`
	SendEmails bool    `json:"send_emails"`
}

// handleBatch re-generates certificates for the selected rows.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Rows) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "No rows selected")
		return
	}

	runner, err := s.newRunner(s.store.Snapshot())
	if err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Pipeline unavailable: "+err.Error())
		return
	}

	result := runner.RunBatch(r.Context(), pipeline.BatchOptions{
		Rows:       req.Rows,
		SendEmails: req.SendEmails,
	})
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGetConfig returns the current settings snapshot.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Snapshot().Map())
}

// handleSaveConfig validates and persists a candidate configuration. The
// result message is user-facing and localized.
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var candidate map[string]string
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := s.store.Save(candidate)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	s.jsonResponse(w, status, result)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
