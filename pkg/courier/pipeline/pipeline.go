// Package pipeline implements the invocation path shared by every
// remote carrier operation: validate input, call the transport once,
// parse the body by content type, classify success/error, validate
// output.
package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Response is the raw result of one transport call.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// BodyKind selects the parsed representation of a response body.
type BodyKind int

const (
	// BodyBytes is the fallback for unknown or missing content types.
	BodyBytes BodyKind = iota
	BodyJSON
	BodyText
)

// Body is the parsed response body, a three-variant union resolved
// once per call from the declared content type.
type Body struct {
	Kind  BodyKind
	JSON  json.RawMessage
	Text  string
	Bytes []byte
}

// ParseBody dispatches on the content type: JSON bodies keep their raw
// message, textual bodies become strings, everything else stays bytes.
func ParseBody(contentType string, data []byte) Body {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return Body{Kind: BodyJSON, JSON: json.RawMessage(data)}
	case strings.Contains(ct, "text"):
		return Body{Kind: BodyText, Text: string(data)}
	default:
		return Body{Kind: BodyBytes, Bytes: data}
	}
}

// Raw returns the underlying bytes regardless of kind.
func (b Body) Raw() []byte {
	switch b.Kind {
	case BodyJSON:
		return []byte(b.JSON)
	case BodyText:
		return []byte(b.Text)
	default:
		return b.Bytes
	}
}

// Transport performs the remote call for one endpoint. It is invoked
// exactly once per Invoke; the pipeline never retries.
type Transport[I any] func(ctx context.Context, input I) (*Response, error)

// Endpoint describes one remote operation.
type Endpoint[I, O any] struct {
	// Name identifies the operation in logs.
	Name string

	// ValidateInput rejects malformed input before any network call.
	ValidateInput func(I) error

	// Decode parses and validates the response body into the output
	// type. It must reject malformed output, never coerce.
	Decode func(Body) (O, error)

	// SuccessCode is the single status code treated as success.
	SuccessCode int

	// Exceptional suppresses output validation failures; used for
	// binary payloads with no structural schema.
	Exceptional bool
}

// Invoke runs the full pipeline for one call. Log events at each stage
// are purely observational; a nil logger disables them.
func Invoke[I, O any](ctx context.Context, ep Endpoint[I, O], input I, call Transport[I], logger *otelzap.Logger) (O, error) {
	var zero O
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	logger.Info("validating input", zap.String("endpoint", ep.Name))
	if ep.ValidateInput != nil {
		if err := ep.ValidateInput(input); err != nil {
			return zero, &ValidationError{Endpoint: ep.Name, Stage: StageInput, Cause: err}
		}
	}

	logger.Info("calling endpoint", zap.String("endpoint", ep.Name))
	resp, err := call(ctx, input)
	if err != nil {
		return zero, err
	}
	logger.Info("endpoint responded",
		zap.String("endpoint", ep.Name),
		zap.Int("status", resp.StatusCode),
	)

	logger.Info("parsing response body",
		zap.String("endpoint", ep.Name),
		zap.String("content_type", resp.ContentType),
	)
	body := ParseBody(resp.ContentType, resp.Body)

	if resp.StatusCode != ep.SuccessCode {
		err := TranslateError(resp.StatusCode, body)
		logger.Error("endpoint returned error",
			zap.String("endpoint", ep.Name),
			zap.Error(err),
		)
		return zero, err
	}

	logger.Info("validating output", zap.String("endpoint", ep.Name))
	out, err := ep.Decode(body)
	if err != nil {
		if ep.Exceptional {
			return out, nil
		}
		logger.Error("invalid response body",
			zap.String("endpoint", ep.Name),
			zap.Error(err),
		)
		return zero, &ValidationError{Endpoint: ep.Name, Stage: StageOutput, Cause: err}
	}

	return out, nil
}
