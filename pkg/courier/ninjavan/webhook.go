package ninjavan

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SignatureHeader carries the webhook HMAC signature.
const SignatureHeader = "X-Ninjavan-Hmac-Sha256"

// Webhook rejection codes. The carrier retries deliveries that do not
// get a 200, so rejections are reported through the failure callback
// while the transport still acknowledges receipt.
const (
	RejectMissingSignature = 9901
	RejectInvalidSignature = 9902
	RejectMissingStatus    = 9903
	RejectNotRegistered    = 9904
	RejectUnknownEventType = 9905
)

// WildcardEvent registers a receiver for every event type.
const WildcardEvent = "*"

// WebhookEvent is the payload of one webhook delivery.
type WebhookEvent struct {
	ShipperID         string           `json:"shipper_id,omitempty"`
	TrackingNumber    string           `json:"tracking_number,omitempty"`
	ShipperOrderRefNo string           `json:"shipper_order_ref_no,omitempty"`
	Timestamp         string           `json:"timestamp,omitempty"`
	Status            string           `json:"status,omitempty"`
	OnRTSLeg          bool             `json:"is_parcel_on_rts_leg,omitempty"`
	HubLocation       *HubLocationBody `json:"WebhookV2HubLocation,omitempty"`
}

// WebhookRejection describes why a delivery was not handed to the
// success callback. Event is the best-effort parse of the body and may
// be nil or partially filled.
type WebhookRejection struct {
	Code    int
	Message string
	Event   *WebhookEvent
}

// EventHandler consumes accepted webhook events.
type EventHandler func(ctx context.Context, event *WebhookEvent)

// RejectionHandler consumes rejected webhook deliveries.
type RejectionHandler func(ctx context.Context, rejection *WebhookRejection)

// Receiver verifies and dispatches webhook deliveries. It is transport
// agnostic: the caller feeds it the raw body and signature header and
// always acknowledges with a 200, regardless of the verdict.
type Receiver struct {
	secret     []byte
	registered map[string]struct{}
	wildcard   bool
	onEvent    EventHandler
	onReject   RejectionHandler
	logger     *otelzap.Logger
}

// ReceiverConfig holds webhook receiver configuration.
type ReceiverConfig struct {
	// Secret signs deliveries. Defaults to the account's client secret
	// on the carrier side.
	Secret string

	// Events lists the registered event types. "*" accepts all.
	Events []string

	OnEvent     EventHandler
	OnRejection RejectionHandler
	Logger      *otelzap.Logger
}

// NewReceiver creates a webhook receiver.
func NewReceiver(cfg ReceiverConfig) *Receiver {
	if cfg.Logger == nil {
		cfg.Logger = otelzap.New(zap.NewNop())
	}

	r := &Receiver{
		secret:     []byte(cfg.Secret),
		registered: make(map[string]struct{}, len(cfg.Events)),
		onEvent:    cfg.OnEvent,
		onReject:   cfg.OnRejection,
		logger:     cfg.Logger,
	}
	for _, ev := range cfg.Events {
		if ev == WildcardEvent {
			r.wildcard = true
			continue
		}
		r.registered[ev] = struct{}{}
	}
	return r
}

// Sign computes the webhook signature for a raw body: base64 of the
// HMAC-SHA256 digest under the given secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Receive verifies one webhook delivery and dispatches it. Verification
// failures go to the rejection handler; Receive itself never returns an
// error so the transport can always acknowledge.
func (r *Receiver) Receive(ctx context.Context, body []byte, signature string) {
	// The body is parsed best-effort up front so rejections can still
	// carry whatever event data was readable.
	var event WebhookEvent
	var parsed *WebhookEvent
	if err := json.Unmarshal(body, &event); err == nil {
		parsed = &event
	}

	if signature == "" {
		r.reject(ctx, RejectMissingSignature, "missing signature header", parsed)
		return
	}

	expected := Sign(r.secret, body)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		r.reject(ctx, RejectInvalidSignature, "invalid signature", parsed)
		return
	}

	if parsed == nil || parsed.Status == "" {
		r.reject(ctx, RejectMissingStatus, "event has no status", parsed)
		return
	}

	if !IsEventType(parsed.Status) {
		r.reject(ctx, RejectUnknownEventType, "unknown event type "+parsed.Status, parsed)
		return
	}

	if !r.wildcard {
		if _, ok := r.registered[parsed.Status]; !ok {
			r.reject(ctx, RejectNotRegistered, "event type "+parsed.Status+" not registered", parsed)
			return
		}
	}

	r.logger.Ctx(ctx).Info("webhook event accepted",
		zap.String("status", parsed.Status),
		zap.String("tracking_number", parsed.TrackingNumber))

	if r.onEvent != nil {
		r.onEvent(ctx, parsed)
	}
}

func (r *Receiver) reject(ctx context.Context, code int, message string, event *WebhookEvent) {
	r.logger.Ctx(ctx).Warn("webhook event rejected",
		zap.Int("code", code),
		zap.String("reason", message))

	if r.onReject != nil {
		r.onReject(ctx, &WebhookRejection{Code: code, Message: message, Event: event})
	}
}
