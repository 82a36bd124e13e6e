// Package mock provides a mock courier implementation for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/tournevent/courier/pkg/courier"
)

// Client is a mock courier for testing. Per-operation hooks override
// the default canned responses.
type Client struct {
	name string

	OnGetToken    func(ctx context.Context) (*courier.Token, error)
	OnCreateOrder func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error)
	OnCancelOrder func(ctx context.Context, trackingNumber string, tok *courier.Token) (*courier.CancelResult, error)
	OnTrackOrder  func(ctx context.Context, trackingNumber string) (*courier.TrackingInfo, error)
}

// New creates a new mock courier.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// GetToken returns a mock token valid for an hour.
func (c *Client) GetToken(ctx context.Context) (*courier.Token, error) {
	if c.OnGetToken != nil {
		return c.OnGetToken(ctx)
	}
	return &courier.Token{
		AccessToken: fmt.Sprintf("%s-token-%d", c.name, time.Now().UnixNano()),
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

// CreateOrder creates a mock order. The requested tracking number, if
// any, is echoed back the way a well-behaved carrier would.
func (c *Client) CreateOrder(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
	if c.OnCreateOrder != nil {
		return c.OnCreateOrder(ctx, req, tok)
	}
	tn := req.RequestedTrackingNumber
	if tn == "" {
		tn = fmt.Sprintf("%d", 100000000+time.Now().UnixNano()%900000000)
	}
	parcel := req.Parcel
	from, to := req.From, req.To
	return &courier.OrderResult{
		TrackingNumber:          tn,
		RequestedTrackingNumber: req.RequestedTrackingNumber,
		ServiceType:             req.ServiceType,
		ServiceLevel:            req.ServiceLevel,
		Reference:               req.Reference,
		From:                    &from,
		To:                      &to,
		Parcel:                  &parcel,
	}, nil
}

// CancelOrder cancels a mock order.
func (c *Client) CancelOrder(ctx context.Context, trackingNumber string, tok *courier.Token) (*courier.CancelResult, error) {
	if c.OnCancelOrder != nil {
		return c.OnCancelOrder(ctx, trackingNumber, tok)
	}
	return &courier.CancelResult{
		TrackingNumber: trackingNumber,
		Status:         "Cancelled",
		UpdatedAt:      time.Now().Format(time.RFC3339),
	}, nil
}

// GenerateWaybill returns a mock document.
func (c *Client) GenerateWaybill(ctx context.Context, req *courier.WaybillRequest) ([]byte, error) {
	return []byte("%PDF-1.4 mock waybill " + req.TrackingNumber), nil
}

// TrackOrder returns mock tracking events.
func (c *Client) TrackOrder(ctx context.Context, trackingNumber string) (*courier.TrackingInfo, error) {
	if c.OnTrackOrder != nil {
		return c.OnTrackOrder(ctx, trackingNumber)
	}
	now := time.Now()
	return &courier.TrackingInfo{
		TrackingNumber:       trackingNumber,
		FullHistoryAvailable: true,
		Events: []courier.TrackingEvent{
			{
				TrackingNumber: trackingNumber,
				Status:         "Successful Pickup",
				Timestamp:      now.Add(-24 * time.Hour).Format(time.RFC3339),
				HubCity:        "Kuala Lumpur",
			},
			{
				TrackingNumber: trackingNumber,
				Status:         "On Vehicle for Delivery",
				Timestamp:      now.Format(time.RFC3339),
				HubCity:        "Kuala Lumpur",
			},
		},
	}, nil
}

// TrackOrders returns mock tracking events for each number.
func (c *Client) TrackOrders(ctx context.Context, trackingNumbers []string) ([]*courier.TrackingInfo, error) {
	result := make([]*courier.TrackingInfo, 0, len(trackingNumbers))
	for _, tn := range trackingNumbers {
		info, err := c.TrackOrder(ctx, tn)
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	return result, nil
}

var _ courier.Courier = (*Client)(nil)
