package server

import "encoding/json"

// Tool describes a callable tool and its argument schema.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ContentItem is one entry of a tool result. Type selects the payload field:
// "json" carries JSON, "text" carries Text.
type ContentItem struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	JSON json.RawMessage `json:"json,omitempty"`
}

// CallResult is the reply structure of a successful tool invocation. Content
// is never empty.
type CallResult struct {
	Content []ContentItem `json:"content"`
}

// rpcRequest is the decoded JSON-RPC envelope. ID and Params stay raw: the
// id is echoed back verbatim and params are decoded per method.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports whether the request carries no id and therefore
// expects no reply.
func (r *rpcRequest) isNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result"`
}

// callParams is the params shape of a tools/call request.
type callParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// notification is a JSON-RPC notification as framed on the SSE stream.
// Params is an interface so that an empty object and an absent field stay
// distinct on the wire: omitempty drops a nil interface but keeps a non-nil
// one holding an empty map.
type notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// statusResponse is the fixed identity document served for any request
// outside the GET/POST/OPTIONS surface.
type statusResponse struct {
	OK      bool     `json:"ok"`
	Server  string   `json:"server"`
	Env     bool     `json:"env"`
	Methods []string `json:"methods"`
}
