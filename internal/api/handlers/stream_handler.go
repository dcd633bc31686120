package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seniornav/careplan/backend/internal/domain/providers"
)

const streamHeartbeatInterval = 30 * time.Second

// DecisionStreamHandler streams a user's assessment decision events to
// the browser over Server-Sent Events, fed by the event bus.
type DecisionStreamHandler struct {
	events    providers.EventBus
	heartbeat time.Duration
}

// NewDecisionStreamHandler creates a stream handler. events may be nil
// when Redis is unavailable; streaming then responds 503.
func NewDecisionStreamHandler(events providers.EventBus) *DecisionStreamHandler {
	return &DecisionStreamHandler{
		events:    events,
		heartbeat: streamHeartbeatInterval,
	}
}

// StreamUserDecisions handles GET /api/users/{id}/stream
func (h *DecisionStreamHandler) StreamUserDecisions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}
	if h.events == nil {
		respondWithError(w, http.StatusServiceUnavailable, "event streaming is not configured")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	channel := providers.GetUserChannel(userID)
	eventChan, err := h.events.Subscribe(r.Context(), channel)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe to decision events")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeServerSentEvent(w, "connected", map[string]interface{}{
		"user_id":   userID,
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			writeServerSentEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event, open := <-eventChan:
			// The bus closes the channel on shutdown; end the stream.
			if !open {
				return
			}
			writeServerSentEvent(w, string(event.Type), event)
			flusher.Flush()
		}
	}
}

// writeServerSentEvent writes one SSE frame. Marshal failures drop the
// frame rather than corrupting the stream.
func writeServerSentEvent(w io.Writer, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data)
}
