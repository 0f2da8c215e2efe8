// -----------------------------------------------------------------------
// Analysis API handlers - submission, status polling and artifact fetch
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/prestocked/internal/analysis"
	"github.com/ternarybob/prestocked/internal/common"
	"github.com/ternarybob/prestocked/internal/interfaces"
	"github.com/ternarybob/prestocked/internal/models"
)

type AnalysisHandler struct {
	service  *analysis.Service
	registry interfaces.JobRegistry
	storage  interfaces.AnalysisStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewAnalysisHandler(service *analysis.Service, registry interfaces.JobRegistry, storage interfaces.AnalysisStorage, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		service:  service,
		registry: registry,
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
	}
}

type analyzeRequest struct {
	Ticker       string `json:"ticker" validate:"required"`
	AnalysisType string `json:"analysis_type" validate:"required,oneof=simple hybrid"`
}

type analyzeResponse struct {
	TaskID *string `json:"task_id"`
}

// formEncoded reports whether the request carries a form body rather than
// JSON. Browser form submissions arrive urlencoded.
func formEncoded(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// AnalyzeHandler accepts a submission and returns the job ID, or a null
// task_id on a cache hit (the caller should fetch artifacts directly).
// Both JSON and form-encoded bodies are accepted.
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req analyzeRequest
	if formEncoded(r) {
		if err := r.ParseForm(); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid form body")
			return
		}
		req.Ticker = r.PostFormValue("ticker")
		req.AnalysisType = r.PostFormValue("analysis_type")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "ticker and analysis_type (simple|hybrid) are required")
		return
	}

	jobID, cached, err := h.service.Submit(r.Context(), req.Ticker, models.AnalysisKind(req.AnalysisType))
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}
	if cached {
		WriteJSON(w, http.StatusOK, analyzeResponse{TaskID: nil})
		return
	}

	WriteJSON(w, http.StatusAccepted, analyzeResponse{TaskID: &jobID})
}

// BacktestHandler accepts a forecaster evaluation request for a ticker.
func (h *AnalysisHandler) BacktestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		Ticker string `json:"ticker" validate:"required"`
	}
	if formEncoded(r) {
		if err := r.ParseForm(); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid form body")
			return
		}
		req.Ticker = r.PostFormValue("ticker")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	jobID, err := h.service.SubmitBacktest(r.Context(), req.Ticker)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, analyzeResponse{TaskID: &jobID})
}

// StatusHandler reports the current state of a job. Handles /status/{id}.
func (h *AnalysisHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/status/")
	if jobID == "" || strings.Contains(jobID, "/") {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, ok := h.registry.Get(jobID)
	if !ok {
		// An unrecognized ID reads as a job that has not started yet.
		// Clients poll the same way either way.
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"state":  models.JobStatePending,
			"status": "Pending...",
		})
		return
	}

	resp := map[string]interface{}{
		"state":  job.State,
		"status": job.Status,
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	WriteJSON(w, http.StatusOK, resp)
}

// DataHandler returns the simple-pipeline artifacts for a ticker. All
// fields are null when no analysis has completed. Handles /data/{ticker}.
func (h *AnalysisHandler) DataHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker, ok := h.tickerFromPath(w, r, "/data/")
	if !ok {
		return
	}

	record, err := h.storage.Get(r.Context(), ticker)
	if err != nil {
		h.logger.Error().Str("ticker", ticker).Err(err).Msg("Failed to read analysis record")
		WriteError(w, http.StatusInternalServerError, "Failed to read analysis record")
		return
	}

	resp := map[string]interface{}{
		"arima_plot": nil,
		"sentiment":  nil,
		"posts":      nil,
	}
	if record != nil {
		if record.ArimaPlot != "" {
			resp["arima_plot"] = record.ArimaPlot
		}
		if record.Sentiment != nil {
			resp["sentiment"] = *record.Sentiment
		}
		if len(record.Posts) > 0 {
			resp["posts"] = record.Posts
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// HybridDataHandler returns the hybrid-pipeline artifact for a ticker.
// Handles /hybrid_data/{ticker}.
func (h *AnalysisHandler) HybridDataHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker, ok := h.tickerFromPath(w, r, "/hybrid_data/")
	if !ok {
		return
	}

	record, err := h.storage.Get(r.Context(), ticker)
	if err != nil {
		h.logger.Error().Str("ticker", ticker).Err(err).Msg("Failed to read analysis record")
		WriteError(w, http.StatusInternalServerError, "Failed to read analysis record")
		return
	}

	resp := map[string]interface{}{
		"hybrid_plot": nil,
	}
	if record != nil && record.HybridPlot != "" {
		resp["hybrid_plot"] = record.HybridPlot
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *AnalysisHandler) tickerFromPath(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	ticker := common.NormalizeTicker(raw)
	if !common.ValidTicker(ticker) {
		WriteError(w, http.StatusBadRequest, "Invalid ticker")
		return "", false
	}
	return ticker, true
}

func (h *AnalysisHandler) writeSubmitError(w http.ResponseWriter, err error) {
	var aerr *models.AnalysisError
	if errors.As(err, &aerr) && aerr.Kind == models.ErrKindInvalidInput {
		WriteError(w, http.StatusBadRequest, aerr.Message)
		return
	}
	h.logger.Error().Err(err).Msg("Job submission failed")
	WriteError(w, http.StatusInternalServerError, "Failed to submit job")
}
