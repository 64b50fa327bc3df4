package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ufcml/predict-api/internal/logic"
	"github.com/ufcml/predict-api/internal/models"
)

// retryAfterSeconds is sent with 503 so polling clients back off briefly.
const retryAfterSeconds = "2"

// Predict handles POST /api/predict
// Returns the cached result or tells the client to poll again.
// @Summary Request Fight Prediction
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PredictRequest true "Matchup"
// @Success 200 {object} models.PredictionResult
// @Success 202 {object} models.ProcessingResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Service Unavailable"
// @Router /predict [post]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := ValidateStruct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	outcome, err := h.prediction.Request(r.Context(), req.Fighter1, req.Fighter2)
	switch {
	case errors.Is(err, logic.ErrInvalidRequest):
		h.errorResponse(w, http.StatusBadRequest, "Both fighter names are required")
		return
	case errors.Is(err, logic.ErrStoreUnavailable), errors.Is(err, logic.ErrQueueUnavailable):
		h.logger.Errorw("Prediction request failed", "error", err, "fighter1", req.Fighter1, "fighter2", req.Fighter2)
		w.Header().Set("Retry-After", retryAfterSeconds)
		h.errorResponse(w, http.StatusServiceUnavailable, "Prediction service temporarily unavailable")
		return
	case err != nil:
		h.logger.Errorw("Prediction request failed", "error", err, "fighter1", req.Fighter1, "fighter2", req.Fighter2)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to request prediction")
		return
	}

	if outcome.Status == logic.StatusComplete {
		h.jsonResponse(w, http.StatusOK, outcome.Result)
		return
	}
	h.jsonResponse(w, http.StatusAccepted, models.ProcessingResponse{Status: string(logic.StatusProcessing)})
}
