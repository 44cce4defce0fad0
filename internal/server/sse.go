package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const sseHeartbeat = 30 * time.Second

// handleSSE streams hub events as server-sent events. The SSE event name is
// the broadcast channel and the data is the JSON encoded argument list.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	client, ok := s.hub.Subscribe(10)
	if !ok {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	defer s.hub.Unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.sendSSEEvent(w, flusher, "connected", map[string]any{
		"timestamp": time.Now().Format(time.RFC3339),
	})

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case event, ok := <-client:
			if !ok {
				return
			}

			s.sendSSEEvent(w, flusher, event.Channel, event.Args)

		case <-heartbeat.C:
			s.sendSSEEvent(w, flusher, "heartbeat", map[string]any{
				"timestamp": time.Now().Format(time.RFC3339),
				"clients":   s.hub.ClientCount(),
			})
		}
	}
}

// sendSSEEvent writes an SSE event to the response
func (s *Server) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, name string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE event", "event", name, "error", err)
		return
	}

	_, _ = fmt.Fprintf(w, "event: %s\n", name)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}
