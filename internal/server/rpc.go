package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const protocolVersion = "2024-11-05"

// decodeEnvelope reads a JSON-RPC request from the POST body. The body may
// be the request object itself or a JSON string wrapping it; both forms are
// accepted.
func decodeEnvelope(r io.Reader) (*rpcRequest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read request body: %v", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("missing request body")
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("invalid request body: %v", err)
		}
		raw = bytes.TrimSpace([]byte(inner))
	}
	var req rpcRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("invalid request body: %v", err)
	}
	return &req, nil
}

// handleRPC runs the POST pipeline: decode the envelope, dispatch the
// method, and encode the reply. Envelope failures and requests for unknown
// methods or tools answer 400; everything else that fails answers 500 with a
// uniform {error} body.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEnvelope(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.isNotification() {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	switch req.Method {
	case "initialize":
		writeResult(w, req.ID, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
			"serverInfo":      map[string]string{"name": serverName, "version": serverVersion},
		})
	case "ping":
		writeResult(w, req.ID, map[string]interface{}{})
	case "tools/list":
		writeResult(w, req.ID, map[string]interface{}{"tools": s.toolDefs()})
	case "tools/call":
		s.handleToolCall(w, r, req)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown method %q", req.Method))
	}
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request, req *rpcRequest) {
	var p callParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid tool call params: "+err.Error())
			return
		}
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "tool name missing")
		return
	}
	t, ok := s.tools[p.Name]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown tool %q", p.Name))
		return
	}

	start := time.Now()
	res, err := t.run(r.Context(), p.Arguments)
	toolCallDuration.WithLabelValues(p.Name).Observe(time.Since(start).Seconds())
	toolCalls.WithLabelValues(p.Name, outcome(err)).Inc()
	if err != nil {
		log.Warn().Err(err).Str("tool", p.Name).Msg("tool call failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeResult(w, req.ID, res)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}

// writeError emits the uniform {"error": message} body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result interface{}) {
	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}
