package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEventBus struct {
	events      chan *entities.AssessmentEvent
	subscribeTo string
	err         error
}

func (b *stubEventBus) Publish(_ context.Context, _ string, _ *entities.AssessmentEvent) error {
	return nil
}

func (b *stubEventBus) Subscribe(_ context.Context, channel string) (<-chan *entities.AssessmentEvent, error) {
	b.subscribeTo = channel
	if b.err != nil {
		return nil, b.err
	}
	return b.events, nil
}

func (b *stubEventBus) Unsubscribe(_ context.Context, _ string) error { return nil }

func (b *stubEventBus) Close() error { return nil }

func streamRequest(t *testing.T, handler *DecisionStreamHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/{id}/stream", handler.StreamUserDecisions)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestStreamUserDecisionsDeliversEvents(t *testing.T) {
	// Pre-filled and closed, so the handler streams the event and ends
	// as on a bus shutdown.
	events := make(chan *entities.AssessmentEvent, 1)
	events <- &entities.AssessmentEvent{
		ID:           "evt-1",
		Type:         entities.EventAssessmentCompleted,
		AssessmentID: "a-1",
		UserID:       "user-1",
		Tier:         entities.TierAssistedLiving,
		Source:       entities.SourceFallback,
		OccurredAt:   time.Now().UTC(),
	}
	close(events)

	bus := &stubEventBus{events: events}
	rec := streamRequest(t, NewDecisionStreamHandler(bus), "/api/users/user-1/stream")

	assert.Equal(t, "assessments:user:user-1", bus.subscribeTo)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, rec.Flushed)

	body := rec.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: assessment.completed")
	assert.Contains(t, body, `"tier":"assisted_living"`)
}

func TestStreamUserDecisionsWithoutBus(t *testing.T) {
	rec := streamRequest(t, NewDecisionStreamHandler(nil), "/api/users/user-1/stream")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamUserDecisionsSubscribeFailure(t *testing.T) {
	bus := &stubEventBus{err: errors.New("redis down")}
	rec := streamRequest(t, NewDecisionStreamHandler(bus), "/api/users/user-1/stream")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	require.NotEmpty(t, bus.subscribeTo)
}
