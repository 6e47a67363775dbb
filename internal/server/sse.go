package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func initializedEvent() notification {
	return notification{JSONRPC: "2.0", Method: "initialized", Params: map[string]interface{}{}}
}

func pingEvent() notification {
	return notification{JSONRPC: "2.0", Method: "ping"}
}

// writeEvent frames a notification as a single SSE data event.
func writeEvent(w io.Writer, n notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// handleStream serves the long-lived SSE session: one capability
// announcement, then keep-alive pings until the peer goes away. The ticker
// is bound to this connection and released on every exit path.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	streamID := uuid.NewString()
	sseStreams.Inc()
	defer sseStreams.Dec()
	log.Info().Str("stream_id", streamID).Str("remote", r.RemoteAddr).Msg("sse stream opened")

	if err := writeEvent(w, initializedEvent()); err != nil {
		log.Warn().Err(err).Str("stream_id", streamID).Msg("sse write failed")
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			log.Info().Str("stream_id", streamID).Msg("sse stream closed")
			return
		case <-ticker.C:
			if err := writeEvent(w, pingEvent()); err != nil {
				log.Warn().Err(err).Str("stream_id", streamID).Msg("sse write failed")
				return
			}
			flusher.Flush()
		}
	}
}
