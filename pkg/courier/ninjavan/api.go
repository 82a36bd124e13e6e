package ninjavan

import (
	"context"
)

// APIClient defines the interface for NinjaVan API operations. This
// abstraction allows for mock implementations during testing and the
// real HTTP implementation in production.
type APIClient interface {
	// RequestToken exchanges client credentials for an access token.
	RequestToken(ctx context.Context, req *TokenRequest) (*TokenResponse, error)

	// CreateOrder creates a new delivery order.
	CreateOrder(ctx context.Context, req *OrderBody, auth string) (*OrderResponse, error)

	// CancelOrder cancels an order by tracking number.
	CancelOrder(ctx context.Context, trackingNumber string, auth string) (*CancelResponse, error)

	// GetWaybill fetches the rendered waybill PDF for an order.
	GetWaybill(ctx context.Context, trackingNumber string, hideShipper bool, auth string) ([]byte, error)

	// GetTracking fetches tracking events for one order.
	GetTracking(ctx context.Context, trackingNumber string, auth string) (*TrackingResponse, error)

	// GetTrackingBatch fetches tracking events for several orders.
	GetTrackingBatch(ctx context.Context, trackingNumbers []string, auth string) (*TrackingBatchResponse, error)
}

// ============================================================================
// API Request/Response Types (match the NinjaVan REST API structure)
// ============================================================================

// TokenRequest is the OAuth client-credentials request.
// POST /{countryCode}/2.0/oauth/access_token
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"` // always "client_credentials"
}

// TokenResponse is the OAuth token response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // "bearer"
	Expires     int64  `json:"expires"`    // epoch seconds
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// AddressBody is a pickup or delivery address.
type AddressBody struct {
	Address1    string  `json:"address1"`
	Address2    string  `json:"address2,omitempty"`
	Area        string  `json:"area,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Postcode    string  `json:"postcode,omitempty"`
	Country     string  `json:"country,omitempty"`
	AddressType string  `json:"address_type,omitempty"` // "home" or "office"
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

// PersonBody is a sender or recipient.
type PersonBody struct {
	Name        string      `json:"name"`
	PhoneNumber string      `json:"phone_number,omitempty"`
	Email       string      `json:"email,omitempty"`
	Address     AddressBody `json:"address"`
}

// TimeslotBody is the delivery window.
type TimeslotBody struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone,omitempty"`
}

// DimensionsBody holds parcel measurements.
type DimensionsBody struct {
	Size   string  `json:"size,omitempty"`
	Length float64 `json:"length,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Weight float64 `json:"weight,omitempty"` // kg
}

// ItemBody is one declared parcel item.
type ItemBody struct {
	Description   string `json:"item_description"`
	Quantity      int    `json:"quantity,omitempty"`
	DangerousGood bool   `json:"is_dangerous_good,omitempty"`
}

// ParcelJobBody holds pickup/delivery details.
type ParcelJobBody struct {
	DeliveryStartDate    string         `json:"delivery_start_date"` // yyyy-MM-dd
	DeliveryTimeslot     TimeslotBody   `json:"delivery_timeslot"`
	DeliveryInstructions string         `json:"delivery_instructions,omitempty"`
	CashOnDelivery       float64        `json:"cash_on_delivery,omitempty"`
	InsuredValue         float64        `json:"insured_value,omitempty"`
	Dimensions           DimensionsBody `json:"dimensions"`
	IsPickupRequired     bool           `json:"is_pickup_required"`
	Items                []ItemBody     `json:"items,omitempty"`
}

// ReferenceBody carries shipper-side identifiers.
type ReferenceBody struct {
	MerchantOrderNumber string `json:"merchant_order_number,omitempty"`
}

// OrderBody is the order creation request.
// POST /{countryCode}/4.0/orders
type OrderBody struct {
	ServiceType             string         `json:"service_type"`
	ServiceLevel            string         `json:"service_level"`
	RequestedTrackingNumber string         `json:"requested_tracking_number,omitempty"`
	Reference               *ReferenceBody `json:"reference,omitempty"`
	From                    PersonBody     `json:"from"`
	To                      PersonBody     `json:"to"`
	ParcelJob               ParcelJobBody  `json:"parcel_job"`
}

// OrderResponse is the order creation response. The carrier echoes the
// requested tracking number when one was supplied and always assigns a
// tracking_number.
type OrderResponse struct {
	TrackingNumber          string         `json:"tracking_number"`
	RequestedTrackingNumber string         `json:"requested_tracking_number,omitempty"`
	ServiceType             string         `json:"service_type,omitempty"`
	ServiceLevel            string         `json:"service_level,omitempty"`
	Reference               *ReferenceBody `json:"reference,omitempty"`
	From                    *PersonBody    `json:"from,omitempty"`
	To                      *PersonBody    `json:"to,omitempty"`
	ParcelJob               *ParcelJobBody `json:"parcel_job,omitempty"`
}

// CancelResponse is the cancellation response.
// DELETE /{countryCode}/2.2/orders/{trackingNumber}
type CancelResponse struct {
	TrackingID string `json:"trackingId,omitempty"`
	Status     string `json:"status,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// TrackingEventBody is one scan/status event.
type TrackingEventBody struct {
	ShipperID         string           `json:"shipper_id,omitempty"`
	TrackingNumber    string           `json:"tracking_number,omitempty"`
	ShipperOrderRefNo string           `json:"shipper_order_ref_no,omitempty"`
	Timestamp         string           `json:"timestamp,omitempty"`
	Status            string           `json:"status,omitempty"`
	OnRTSLeg          bool             `json:"is_parcel_on_rts_leg,omitempty"`
	HubLocation       *HubLocationBody `json:"WebhookV2HubLocation,omitempty"`
}

// HubLocationBody locates the hub a scan happened at.
type HubLocationBody struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Hub     string `json:"hub,omitempty"`
}

// TrackingResponse is the single-order tracking response.
// GET /{countryCode}/1.0/orders/tracking-events/{trackingNumber}
type TrackingResponse struct {
	TrackingNumber         string              `json:"tracking_number,omitempty"`
	IsFullHistoryAvailable bool                `json:"is_full_history_available,omitempty"`
	Events                 []TrackingEventBody `json:"events"`
}

// TrackingBatchResponse is the batch tracking response.
// GET /{countryCode}/1.0/orders/tracking-events?tracking_number=...
type TrackingBatchResponse struct {
	Data []TrackingResponse `json:"data"`
}
