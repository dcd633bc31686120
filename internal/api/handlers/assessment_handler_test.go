package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seniornav/careplan/backend/internal/application/services"
	"github.com/seniornav/careplan/backend/internal/domain/entities"
	apperrors "github.com/seniornav/careplan/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	result    *services.AssessmentResult
	decision  *entities.PolicyDecision
	decisions []*entities.PolicyDecision
	snapshots []*entities.DecisionSnapshot
	err       error
}

func (s *stubService) Submit(_ context.Context, _ *entities.Assessment) (*services.AssessmentResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubService) GetDecision(_ context.Context, _ string) (*entities.PolicyDecision, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.decision, nil
}

func (s *stubService) ListUserDecisions(_ context.Context, _ string, _ int) ([]*entities.PolicyDecision, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.decisions, nil
}

func (s *stubService) ListUserSnapshots(_ context.Context, _ string) ([]*entities.DecisionSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshots, nil
}

func submitBody(t *testing.T, userID string, answers entities.AnswerSet) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{
		"user_id": userID,
		"answers": answers,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func TestSubmitAssessmentCreated(t *testing.T) {
	service := &stubService{result: &services.AssessmentResult{
		Assessment: &entities.Assessment{ID: "a-1", UserID: "user-1"},
		Decision: &entities.PolicyDecision{
			AssessmentID: "a-1",
			ChosenTier:   entities.TierInHome,
			Source:       entities.SourceFallback,
		},
	}}
	handler := NewAssessmentHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/assessments",
		submitBody(t, "user-1", entities.AnswerSet{"q1_memory_changes": "mild"}))
	rec := httptest.NewRecorder()

	handler.SubmitAssessment(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body services.AssessmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, entities.TierInHome, body.Decision.ChosenTier)
}

func TestSubmitAssessmentRejectsBadPayloads(t *testing.T) {
	handler := NewAssessmentHandler(&stubService{})

	cases := []struct {
		name string
		body *bytes.Buffer
	}{
		{"malformed json", bytes.NewBufferString("{not json")},
		{"missing user", submitBody(t, "", entities.AnswerSet{"q": "a"})},
		{"missing answers", submitBody(t, "user-1", entities.AnswerSet{})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/assessments", tc.body)
			rec := httptest.NewRecorder()

			handler.SubmitAssessment(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitAssessmentRejectsOversizedPayload(t *testing.T) {
	handler := NewAssessmentHandler(&stubService{})

	answers := entities.AnswerSet{}
	for i := 0; i < maxAnswerCount+1; i++ {
		answers["q"+string(rune('a'+i%26))+string(rune('a'+i/26))] = "x"
	}
	req := httptest.NewRequest(http.MethodPost, "/api/assessments", submitBody(t, "user-1", answers))
	rec := httptest.NewRecorder()

	handler.SubmitAssessment(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAssessmentMapsServiceErrors(t *testing.T) {
	handler := NewAssessmentHandler(&stubService{err: apperrors.NewValidationError("user ID is required")})

	req := httptest.NewRequest(http.MethodPost, "/api/assessments",
		submitBody(t, "user-1", entities.AnswerSet{"q": "a"}))
	rec := httptest.NewRecorder()

	handler.SubmitAssessment(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDecisionByAssessment(t *testing.T) {
	mux := http.NewServeMux()
	handler := NewAssessmentHandler(&stubService{decision: &entities.PolicyDecision{
		AssessmentID: "a-1",
		ChosenTier:   entities.TierAssistedLiving,
		Source:       entities.SourceLLM,
	}})
	mux.HandleFunc("GET /api/assessments/{id}/decision", handler.GetDecision)

	req := httptest.NewRequest(http.MethodGet, "/api/assessments/a-1/decision", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var decision entities.PolicyDecision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.Equal(t, entities.TierAssistedLiving, decision.ChosenTier)
}

func TestGetDecisionNotFound(t *testing.T) {
	mux := http.NewServeMux()
	handler := NewAssessmentHandler(&stubService{err: apperrors.NewNotFoundError("decision not found")})
	mux.HandleFunc("GET /api/assessments/{id}/decision", handler.GetDecision)

	req := httptest.NewRequest(http.MethodGet, "/api/assessments/missing/decision", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUserDecisionsLimitValidation(t *testing.T) {
	mux := http.NewServeMux()
	handler := NewAssessmentHandler(&stubService{decisions: []*entities.PolicyDecision{
		{AssessmentID: "a-1", ChosenTier: entities.TierInHome},
	}})
	mux.HandleFunc("GET /api/users/{id}/decisions", handler.ListUserDecisions)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/decisions?limit=abc", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/users/user-1/decisions?limit=5", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}

func TestListUserSnapshotsEmpty(t *testing.T) {
	mux := http.NewServeMux()
	handler := NewAssessmentHandler(&stubService{})
	mux.HandleFunc("GET /api/users/{id}/snapshots", handler.ListUserSnapshots)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/snapshots", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Count)
}
