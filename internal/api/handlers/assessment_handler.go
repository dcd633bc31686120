package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/seniornav/careplan/backend/internal/application/services"
	"github.com/seniornav/careplan/backend/internal/domain/entities"
	apperrors "github.com/seniornav/careplan/backend/pkg/errors"
)

const maxAnswerCount = 200

// AssessmentSubmitter defines the assessment operations used by the handler.
type AssessmentSubmitter interface {
	Submit(ctx context.Context, assessment *entities.Assessment) (*services.AssessmentResult, error)
	GetDecision(ctx context.Context, assessmentID string) (*entities.PolicyDecision, error)
	ListUserDecisions(ctx context.Context, userID string, limit int) ([]*entities.PolicyDecision, error)
	ListUserSnapshots(ctx context.Context, userID string) ([]*entities.DecisionSnapshot, error)
}

// AssessmentHandler handles assessment submissions and decision reads.
type AssessmentHandler struct {
	service AssessmentSubmitter
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(service AssessmentSubmitter) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

type submitRequest struct {
	UserID  string             `json:"user_id"`
	Answers entities.AnswerSet `json:"answers"`
}

// SubmitAssessment handles POST /api/assessments
func (h *AssessmentHandler) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if payload.UserID == "" {
		respondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if len(payload.Answers) == 0 {
		respondWithError(w, http.StatusBadRequest, "answers are required")
		return
	}
	if len(payload.Answers) > maxAnswerCount {
		respondWithError(w, http.StatusBadRequest, "too many answers")
		return
	}

	result, err := h.service.Submit(r.Context(), &entities.Assessment{
		UserID:  payload.UserID,
		Answers: payload.Answers,
	})
	if err != nil {
		respondWithAppError(w, err, "failed to process assessment")
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// GetDecision handles GET /api/assessments/{id}/decision
func (h *AssessmentHandler) GetDecision(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	decision, err := h.service.GetDecision(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err, "failed to get decision")
		return
	}

	respondWithJSON(w, http.StatusOK, decision)
}

// ListUserDecisions handles GET /api/users/{id}/decisions
func (h *AssessmentHandler) ListUserDecisions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	decisions, err := h.service.ListUserDecisions(r.Context(), id, limit)
	if err != nil {
		respondWithAppError(w, err, "failed to list decisions")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"decisions": decisions,
		"count":     len(decisions),
	})
}

// ListUserSnapshots handles GET /api/users/{id}/snapshots
func (h *AssessmentHandler) ListUserSnapshots(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	snapshots, err := h.service.ListUserSnapshots(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err, "failed to list snapshots")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// respondWithAppError maps application error types to HTTP statuses.
func respondWithAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		}
	}
	respondWithError(w, http.StatusInternalServerError, fallback)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
