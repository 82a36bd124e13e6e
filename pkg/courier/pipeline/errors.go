package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Stage names the pipeline stage a validation failure occurred in.
type Stage string

const (
	StageInput  Stage = "input"
	StageOutput Stage = "output"
)

// ValidationError reports an input or output schema mismatch. Fatal,
// never retried.
type ValidationError struct {
	Endpoint string
	Stage    Stage
	Cause    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %v", e.Endpoint, e.Stage, e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// RemoteError is a non-success carrier response translated into one
// normalized message.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("carrier responded %d: %s", e.StatusCode, e.Message)
}

// errorShape extracts a message from one known error-body layout.
// Returns "" when the body does not match the shape.
type errorShape func(json.RawMessage) string

// Carrier error bodies are heterogeneous. The shapes below are tried in
// order; the order matters because the layouts structurally overlap.
var errorShapes = []errorShape{
	// {"nvErrorCode": ..., "description": ..., "data": {"message": ...}, "messages": [...]}
	func(raw json.RawMessage) string {
		var body struct {
			NVErrorCode *json.RawMessage `json:"nvErrorCode"`
			Description string           `json:"description"`
			Data        *struct {
				Message string `json:"message"`
			} `json:"data"`
			Messages []string `json:"messages"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return ""
		}
		if body.NVErrorCode == nil && body.Data == nil {
			return ""
		}
		parts := []string{body.Description}
		if body.Data != nil {
			parts = append(parts, body.Data.Message)
		}
		parts = append(parts, body.Messages...)
		return joinNonEmpty(parts)
	},
	// {"error": {"title": ..., "message": ..., "details": [{"message": ...}]}}
	func(raw json.RawMessage) string {
		var body struct {
			Error *struct {
				Title   string `json:"title"`
				Message string `json:"message"`
				Details []struct {
					Message string `json:"message"`
				} `json:"details"`
			} `json:"error"`
		}
		if err := json.Unmarshal(raw, &body); err != nil || body.Error == nil {
			return ""
		}
		parts := []string{body.Error.Title, body.Error.Message}
		for _, d := range body.Error.Details {
			parts = append(parts, d.Message)
		}
		return joinNonEmpty(parts)
	},
}

// TranslateError normalizes a non-success response body into a
// RemoteError. JSON bodies run through the ordered shape matchers,
// text bodies are used verbatim, anything else falls back to a generic
// message.
func TranslateError(status int, body Body) error {
	switch body.Kind {
	case BodyJSON:
		for _, shape := range errorShapes {
			if msg := shape(body.JSON); msg != "" {
				return &RemoteError{StatusCode: status, Message: msg}
			}
		}
		return &RemoteError{StatusCode: status, Message: "unknown carrier error"}
	case BodyText:
		if strings.TrimSpace(body.Text) != "" {
			return &RemoteError{StatusCode: status, Message: body.Text}
		}
		return &RemoteError{StatusCode: status, Message: "unknown carrier error"}
	default:
		return &RemoteError{StatusCode: status, Message: "unknown error"}
	}
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, " ")
}
