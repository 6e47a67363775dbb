package server

import (
	"context"
	"errors"
	"fmt"

	"figma-mcp/internal/figma"
)

// ArgumentError reports a tool argument that failed validation. Field names
// the offending argument.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// errNoImageURL distinguishes a logically empty export result from a
// transport failure.
var errNoImageURL = errors.New("no image URL returned")

type toolFunc func(ctx context.Context, args map[string]interface{}) (*CallResult, error)

type tool struct {
	def Tool
	run toolFunc
}

// registerTools builds the fixed tool registry. It runs once in New; the
// registry is never mutated afterwards.
func (s *Server) registerTools() {
	s.tools = map[string]tool{
		"get-file": {
			def: Tool{
				Name:        "get-file",
				Description: "Fetch a Figma file's document graph as JSON",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"fileKey": map[string]interface{}{"type": "string", "description": "Figma file key"},
					},
					"required": []string{"fileKey"},
				},
			},
			run: s.runGetFile,
		},
		"export-node": {
			def: Tool{
				Name:        "export-node",
				Description: "Export a node from a Figma file and return its image URL",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"fileKey": map[string]interface{}{"type": "string", "description": "Figma file key"},
						"nodeId":  map[string]interface{}{"type": "string", "description": "Node id, e.g. 1:2"},
						"format":  map[string]interface{}{"type": "string", "enum": []string{"png", "svg"}, "default": "png"},
						"scale":   map[string]interface{}{"type": "number", "minimum": 0.1, "maximum": 4, "default": 1},
					},
					"required": []string{"fileKey", "nodeId"},
				},
			},
			run: s.runExportNode,
		},
	}
	s.toolOrder = []string{"get-file", "export-node"}
}

// toolDefs returns the descriptors in registration order.
func (s *Server) toolDefs() []Tool {
	defs := make([]Tool, 0, len(s.toolOrder))
	for _, name := range s.toolOrder {
		defs = append(defs, s.tools[name].def)
	}
	return defs
}

func (s *Server) runGetFile(ctx context.Context, args map[string]interface{}) (*CallResult, error) {
	fileKey, err := stringArg(args, "fileKey")
	if err != nil {
		return nil, err
	}
	doc, err := s.backend.File(ctx, fileKey)
	if err != nil {
		return nil, err
	}
	return &CallResult{Content: []ContentItem{{Type: "json", JSON: doc}}}, nil
}

func (s *Server) runExportNode(ctx context.Context, args map[string]interface{}) (*CallResult, error) {
	fileKey, err := stringArg(args, "fileKey")
	if err != nil {
		return nil, err
	}
	nodeID, err := stringArg(args, "nodeId")
	if err != nil {
		return nil, err
	}
	format := "png"
	if v, ok := args["format"]; ok {
		str, isString := v.(string)
		if !isString || (str != "png" && str != "svg") {
			return nil, &ArgumentError{Field: "format", Reason: `must be "png" or "svg"`}
		}
		format = str
	}
	scale := 1.0
	if v, ok := args["scale"]; ok {
		n, isNumber := v.(float64)
		if !isNumber {
			return nil, &ArgumentError{Field: "scale", Reason: "must be a number"}
		}
		if n < 0.1 || n > 4 {
			return nil, &ArgumentError{Field: "scale", Reason: "must be between 0.1 and 4"}
		}
		scale = n
	}

	urls, err := s.backend.ImageURLs(ctx, fileKey, nodeID, format, scale)
	if err != nil {
		return nil, err
	}
	imageURL, ok := urls[nodeID]
	if !ok || imageURL == "" {
		return nil, fmt.Errorf("%w for node %s", errNoImageURL, nodeID)
	}
	return &CallResult{Content: []ContentItem{{Type: "text", Text: imageURL}}}, nil
}

// stringArg extracts a required non-empty string argument.
func stringArg(args map[string]interface{}, field string) (string, error) {
	v, ok := args[field]
	if !ok {
		return "", &ArgumentError{Field: field, Reason: "required"}
	}
	str, ok := v.(string)
	if !ok {
		return "", &ArgumentError{Field: field, Reason: "must be a string"}
	}
	if str == "" {
		return "", &ArgumentError{Field: field, Reason: "must not be empty"}
	}
	return str, nil
}

// outcome classifies a tool call result for the metrics counter.
func outcome(err error) string {
	var argErr *ArgumentError
	var apiErr *figma.APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &argErr):
		return "invalid_argument"
	case errors.Is(err, figma.ErrMissingToken):
		return "config"
	case errors.As(err, &apiErr):
		return "backend_error"
	case errors.Is(err, errNoImageURL):
		return "empty_result"
	default:
		return "error"
	}
}
