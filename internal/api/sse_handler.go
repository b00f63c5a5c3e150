package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"tessera/internal/utils"

	"github.com/go-chi/chi/v5"
)

// StreamSeatEvents pushes seat status transitions for one event over SSE,
// so seat-map clients can update without polling.
func (h *Handler) StreamSeatEvents(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if _, err := h.Registry.Event(eventID); err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := h.Emitter.Subscribe(r.Context(), eventID)
	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: seat-status\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}
