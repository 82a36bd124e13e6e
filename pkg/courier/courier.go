// Package courier provides an orchestration layer over parcel-delivery
// carrier APIs: single-order lifecycle operations, all-or-nothing batch
// creation with compensating cancellation, tracking-number
// reconciliation, and waybill generation.
package courier

import (
	"context"
)

// Courier defines the interface a carrier integration must implement.
type Courier interface {
	// Name returns the carrier identifier (e.g., "ninjavan").
	Name() string

	// GetToken returns a valid auth token, fetching and caching one
	// when needed.
	GetToken(ctx context.Context) (*Token, error)

	// CreateOrder creates a single delivery order. A nil token makes
	// the carrier fetch its own.
	CreateOrder(ctx context.Context, req *OrderRequest, tok *Token) (*OrderResult, error)

	// CancelOrder cancels an order by its carrier tracking number.
	CancelOrder(ctx context.Context, trackingNumber string, tok *Token) (*CancelResult, error)

	// GenerateWaybill fetches the carrier-rendered waybill document
	// for an order. The payload is opaque binary (usually PDF).
	GenerateWaybill(ctx context.Context, req *WaybillRequest) ([]byte, error)

	// TrackOrder fetches tracking events for one order.
	TrackOrder(ctx context.Context, trackingNumber string) (*TrackingInfo, error)

	// TrackOrders fetches tracking events for several orders at once.
	TrackOrders(ctx context.Context, trackingNumbers []string) ([]*TrackingInfo, error)
}
