package ninjavan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient implements APIClient with canned responses for testing
// and local development. Per-call hooks override the defaults.
type MockAPIClient struct {
	// SimulateErrors makes all operations fail.
	SimulateErrors bool

	// SimulateLatency adds a delay before responding.
	SimulateLatency time.Duration

	// Optional hooks to customize responses per call.
	OnRequestToken     func(ctx context.Context, req *TokenRequest) (*TokenResponse, error)
	OnCreateOrder      func(ctx context.Context, req *OrderBody, auth string) (*OrderResponse, error)
	OnCancelOrder      func(ctx context.Context, trackingNumber string, auth string) (*CancelResponse, error)
	OnGetWaybill       func(ctx context.Context, trackingNumber string, hideShipper bool, auth string) ([]byte, error)
	OnGetTracking      func(ctx context.Context, trackingNumber string, auth string) (*TrackingResponse, error)
	OnGetTrackingBatch func(ctx context.Context, trackingNumbers []string, auth string) (*TrackingBatchResponse, error)
}

// NewMockAPIClient creates a new mock API client.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate(ctx context.Context, op string) error {
	if m.SimulateLatency > 0 {
		select {
		case <-time.After(m.SimulateLatency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.SimulateErrors {
		return fmt.Errorf("simulated %s error", op)
	}
	return nil
}

// RequestToken returns a mock token valid for an hour.
func (m *MockAPIClient) RequestToken(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	if err := m.simulate(ctx, "token"); err != nil {
		return nil, err
	}
	if m.OnRequestToken != nil {
		return m.OnRequestToken(ctx, req)
	}
	if err := validateTokenRequest(req); err != nil {
		return nil, err
	}
	now := time.Now()
	return &TokenResponse{
		AccessToken: "mock-" + uuid.New().String(),
		TokenType:   "bearer",
		Expires:     now.Add(time.Hour).Unix(),
		ExpiresIn:   3600,
	}, nil
}

// CreateOrder creates a mock order, echoing the requested tracking
// number when one was supplied.
func (m *MockAPIClient) CreateOrder(ctx context.Context, req *OrderBody, auth string) (*OrderResponse, error) {
	if err := m.simulate(ctx, "create order"); err != nil {
		return nil, err
	}
	if m.OnCreateOrder != nil {
		return m.OnCreateOrder(ctx, req, auth)
	}
	if err := validateOrderBody(req); err != nil {
		return nil, err
	}
	tn := req.RequestedTrackingNumber
	if tn == "" {
		tn = fmt.Sprintf("NVMOCK%09d", time.Now().UnixNano()%1000000000)
	}
	return &OrderResponse{
		TrackingNumber:          tn,
		RequestedTrackingNumber: req.RequestedTrackingNumber,
		ServiceType:             req.ServiceType,
		ServiceLevel:            req.ServiceLevel,
		Reference:               req.Reference,
		From:                    &req.From,
		To:                      &req.To,
		ParcelJob:               &req.ParcelJob,
	}, nil
}

// CancelOrder cancels a mock order.
func (m *MockAPIClient) CancelOrder(ctx context.Context, trackingNumber string, auth string) (*CancelResponse, error) {
	if err := m.simulate(ctx, "cancel order"); err != nil {
		return nil, err
	}
	if m.OnCancelOrder != nil {
		return m.OnCancelOrder(ctx, trackingNumber, auth)
	}
	if trackingNumber == "" {
		return nil, errors.New("tracking number is required")
	}
	return &CancelResponse{
		TrackingID: trackingNumber,
		Status:     "Cancelled",
		UpdatedAt:  time.Now().Format(time.RFC3339),
	}, nil
}

// GetWaybill returns a mock PDF payload.
func (m *MockAPIClient) GetWaybill(ctx context.Context, trackingNumber string, hideShipper bool, auth string) ([]byte, error) {
	if err := m.simulate(ctx, "waybill"); err != nil {
		return nil, err
	}
	if m.OnGetWaybill != nil {
		return m.OnGetWaybill(ctx, trackingNumber, hideShipper, auth)
	}
	return []byte("%PDF-1.4 mock waybill " + trackingNumber), nil
}

// GetTracking returns mock tracking events for one order.
func (m *MockAPIClient) GetTracking(ctx context.Context, trackingNumber string, auth string) (*TrackingResponse, error) {
	if err := m.simulate(ctx, "tracking"); err != nil {
		return nil, err
	}
	if m.OnGetTracking != nil {
		return m.OnGetTracking(ctx, trackingNumber, auth)
	}
	now := time.Now()
	return &TrackingResponse{
		TrackingNumber:         trackingNumber,
		IsFullHistoryAvailable: true,
		Events: []TrackingEventBody{
			{
				TrackingNumber: trackingNumber,
				Status:         "Successful Pickup",
				Timestamp:      now.Add(-24 * time.Hour).Format(time.RFC3339),
				HubLocation:    &HubLocationBody{Country: "MY", City: "Kuala Lumpur", Hub: "KL-HUB-01"},
			},
			{
				TrackingNumber: trackingNumber,
				Status:         "On Vehicle for Delivery",
				Timestamp:      now.Format(time.RFC3339),
				HubLocation:    &HubLocationBody{Country: "MY", City: "Kuala Lumpur", Hub: "KL-HUB-01"},
			},
		},
	}, nil
}

// GetTrackingBatch returns mock tracking events for each order.
func (m *MockAPIClient) GetTrackingBatch(ctx context.Context, trackingNumbers []string, auth string) (*TrackingBatchResponse, error) {
	if err := m.simulate(ctx, "tracking batch"); err != nil {
		return nil, err
	}
	if m.OnGetTrackingBatch != nil {
		return m.OnGetTrackingBatch(ctx, trackingNumbers, auth)
	}
	resp := &TrackingBatchResponse{Data: make([]TrackingResponse, 0, len(trackingNumbers))}
	for _, tn := range trackingNumbers {
		single, err := m.GetTracking(ctx, tn, auth)
		if err != nil {
			return nil, err
		}
		resp.Data = append(resp.Data, *single)
	}
	return resp, nil
}

var _ APIClient = (*MockAPIClient)(nil)
