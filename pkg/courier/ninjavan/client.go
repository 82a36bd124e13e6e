// Package ninjavan implements the NinjaVan carrier integration.
package ninjavan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tournevent/courier/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const carrierName = "ninjavan"

// tokenSafetyMargin is subtracted from the carrier-reported expiry so a
// token is never used within its last moments of validity.
const tokenSafetyMargin = 300 * time.Second

// Config holds NinjaVan client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string // e.g. https://api.ninjavan.co
	CountryCode  string // lowercase ISO country, e.g. "sg", "my"
	UseMock      bool
	Timeout      time.Duration
}

// Client implements the courier.Courier interface for NinjaVan.
type Client struct {
	config Config
	api    APIClient
	tokens courier.TokenStore
	logger *otelzap.Logger
}

// NewClient creates a new NinjaVan client. A nil store defaults to an
// in-process cache; a nil logger defaults to a no-op logger.
func NewClient(cfg Config, store courier.TokenStore, logger *otelzap.Logger) *Client {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if store == nil {
		store = courier.NewMemoryTokenStore()
	}

	var api APIClient
	if cfg.UseMock {
		api = NewMockAPIClient()
	} else {
		api = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:     cfg.BaseURL,
			CountryCode: cfg.CountryCode,
			Timeout:     cfg.Timeout,
			Logger:      logger,
		})
	}

	return &Client{
		config: cfg,
		api:    api,
		tokens: store,
		logger: logger,
	}
}

// NewClientWithAPI creates a client backed by a caller-supplied
// APIClient. Used in tests.
func NewClientWithAPI(cfg Config, api APIClient, store courier.TokenStore, logger *otelzap.Logger) *Client {
	c := NewClient(cfg, store, logger)
	c.api = api
	return c
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

func (c *Client) tokenKey() string {
	return fmt.Sprintf("%s/%s?client_id=%s", carrierName, c.config.CountryCode, c.config.ClientID)
}

// GetToken returns a cached token when one is still valid, otherwise
// requests a fresh one from the carrier and caches it.
func (c *Client) GetToken(ctx context.Context) (*courier.Token, error) {
	key := c.tokenKey()

	cached, err := c.tokens.Get(ctx, key)
	if err != nil {
		c.logger.Ctx(ctx).Warn("token cache read failed", zap.Error(err))
	}
	if cached.Valid(time.Now()) {
		return cached, nil
	}

	resp, err := c.api.RequestToken(ctx, &TokenRequest{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		GrantType:    "client_credentials",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	tok := &courier.Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresAt:   time.Now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenSafetyMargin),
	}

	// A failed cache write only costs an extra token request next time.
	if err := c.tokens.Put(ctx, key, tok); err != nil {
		c.logger.Ctx(ctx).Warn("token cache write failed", zap.Error(err))
	}

	return tok, nil
}

// CreateOrder creates a delivery order with the carrier.
func (c *Client) CreateOrder(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
	tok, err := c.ensureToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.CreateOrder(ctx, orderBodyFromRequest(req), tok.AuthHeader())
	if err != nil {
		return nil, err
	}
	return orderResultFromResponse(resp), nil
}

// CancelOrder cancels an order by tracking number.
func (c *Client) CancelOrder(ctx context.Context, trackingNumber string, tok *courier.Token) (*courier.CancelResult, error) {
	tok, err := c.ensureToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.CancelOrder(ctx, trackingNumber, tok.AuthHeader())
	if err != nil {
		return nil, err
	}

	result := &courier.CancelResult{
		TrackingNumber: resp.TrackingID,
		Status:         resp.Status,
		UpdatedAt:      resp.UpdatedAt,
	}
	if result.TrackingNumber == "" {
		result.TrackingNumber = trackingNumber
	}
	return result, nil
}

// GenerateWaybill fetches the rendered waybill PDF. The carrier returns
// an empty body while the order is still settling on its side.
func (c *Client) GenerateWaybill(ctx context.Context, req *courier.WaybillRequest) ([]byte, error) {
	tok, err := c.ensureToken(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.api.GetWaybill(ctx, req.TrackingNumber, !req.ShowShipperDetails, tok.AuthHeader())
}

// TrackOrder fetches tracking events for one order.
func (c *Client) TrackOrder(ctx context.Context, trackingNumber string) (*courier.TrackingInfo, error) {
	tok, err := c.ensureToken(ctx, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.GetTracking(ctx, trackingNumber, tok.AuthHeader())
	if err != nil {
		return nil, err
	}
	return trackingInfoFromResponse(resp), nil
}

// TrackOrders fetches tracking events for several orders in one call.
func (c *Client) TrackOrders(ctx context.Context, trackingNumbers []string) ([]*courier.TrackingInfo, error) {
	tok, err := c.ensureToken(ctx, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.GetTrackingBatch(ctx, trackingNumbers, tok.AuthHeader())
	if err != nil {
		return nil, err
	}

	infos := make([]*courier.TrackingInfo, 0, len(resp.Data))
	for i := range resp.Data {
		infos = append(infos, trackingInfoFromResponse(&resp.Data[i]))
	}
	return infos, nil
}

func (c *Client) ensureToken(ctx context.Context, tok *courier.Token) (*courier.Token, error) {
	if tok.Valid(time.Now()) {
		return tok, nil
	}
	return c.GetToken(ctx)
}

// ============================================================================
// Domain <-> wire conversions
// ============================================================================

func addressBody(a courier.Address) AddressBody {
	return AddressBody{
		Address1:    a.Line1,
		Address2:    a.Line2,
		Area:        a.Area,
		City:        a.City,
		State:       a.Province,
		Postcode:    a.PostalCode,
		Country:     strings.ToUpper(a.CountryCode),
		AddressType: a.AddressType,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
	}
}

func personBody(ct courier.Contact) PersonBody {
	return PersonBody{
		Name:        ct.Name,
		PhoneNumber: ct.Phone,
		Email:       ct.Email,
		Address:     addressBody(ct.Address),
	}
}

func orderBodyFromRequest(req *courier.OrderRequest) *OrderBody {
	items := make([]ItemBody, 0, len(req.Parcel.Items))
	for _, it := range req.Parcel.Items {
		items = append(items, ItemBody{
			Description:   it.Description,
			Quantity:      it.Quantity,
			DangerousGood: it.DangerousGood,
		})
	}

	body := &OrderBody{
		ServiceType:             string(req.ServiceType),
		ServiceLevel:            string(req.ServiceLevel),
		RequestedTrackingNumber: req.RequestedTrackingNumber,
		From:                    personBody(req.From),
		To:                      personBody(req.To),
		ParcelJob: ParcelJobBody{
			DeliveryStartDate:    req.Parcel.DeliveryStartDate,
			DeliveryTimeslot:     TimeslotBody(req.Parcel.DeliveryTimeslot),
			DeliveryInstructions: req.Parcel.Instructions,
			CashOnDelivery:       req.Parcel.CashOnDelivery,
			InsuredValue:         req.Parcel.InsuredValue,
			Dimensions:           DimensionsBody(req.Parcel.Dimensions),
			IsPickupRequired:     req.Parcel.PickupRequired,
			Items:                items,
		},
	}
	if req.Reference != "" {
		body.Reference = &ReferenceBody{MerchantOrderNumber: req.Reference}
	}
	return body
}

func contactFromPerson(p *PersonBody) *courier.Contact {
	if p == nil {
		return nil
	}
	return &courier.Contact{
		Name:  p.Name,
		Phone: p.PhoneNumber,
		Email: p.Email,
		Address: courier.Address{
			Line1:       p.Address.Address1,
			Line2:       p.Address.Address2,
			Area:        p.Address.Area,
			City:        p.Address.City,
			Province:    p.Address.State,
			PostalCode:  p.Address.Postcode,
			CountryCode: p.Address.Country,
			AddressType: p.Address.AddressType,
			Latitude:    p.Address.Latitude,
			Longitude:   p.Address.Longitude,
		},
	}
}

func parcelFromJob(job *ParcelJobBody) *courier.ParcelJob {
	if job == nil {
		return nil
	}
	items := make([]courier.Item, 0, len(job.Items))
	for _, it := range job.Items {
		items = append(items, courier.Item{
			Description:   it.Description,
			Quantity:      it.Quantity,
			DangerousGood: it.DangerousGood,
		})
	}
	return &courier.ParcelJob{
		DeliveryStartDate: job.DeliveryStartDate,
		DeliveryTimeslot:  courier.Timeslot(job.DeliveryTimeslot),
		Instructions:      job.DeliveryInstructions,
		CashOnDelivery:    job.CashOnDelivery,
		InsuredValue:      job.InsuredValue,
		Dimensions:        courier.Dimensions(job.Dimensions),
		PickupRequired:    job.IsPickupRequired,
		Items:             items,
	}
}

func orderResultFromResponse(resp *OrderResponse) *courier.OrderResult {
	result := &courier.OrderResult{
		TrackingNumber:          resp.TrackingNumber,
		RequestedTrackingNumber: resp.RequestedTrackingNumber,
		ServiceType:             courier.ServiceType(resp.ServiceType),
		ServiceLevel:            courier.ServiceLevel(resp.ServiceLevel),
		From:                    contactFromPerson(resp.From),
		To:                      contactFromPerson(resp.To),
		Parcel:                  parcelFromJob(resp.ParcelJob),
	}
	if resp.Reference != nil {
		result.Reference = resp.Reference.MerchantOrderNumber
	}
	return result
}

func trackingInfoFromResponse(resp *TrackingResponse) *courier.TrackingInfo {
	events := make([]courier.TrackingEvent, 0, len(resp.Events))
	for _, ev := range resp.Events {
		event := courier.TrackingEvent{
			TrackingNumber: ev.TrackingNumber,
			ShipperID:      ev.ShipperID,
			ShipperRef:     ev.ShipperOrderRefNo,
			Status:         ev.Status,
			Timestamp:      ev.Timestamp,
			OnReturnLeg:    ev.OnRTSLeg,
		}
		if ev.HubLocation != nil {
			event.HubCountry = ev.HubLocation.Country
			event.HubCity = ev.HubLocation.City
			event.Hub = ev.HubLocation.Hub
		}
		events = append(events, event)
	}

	tn := resp.TrackingNumber
	if tn == "" && len(events) > 0 {
		tn = events[0].TrackingNumber
	}
	return &courier.TrackingInfo{
		TrackingNumber:       tn,
		FullHistoryAvailable: resp.IsFullHistoryAvailable,
		Events:               events,
	}
}

var _ courier.Courier = (*Client)(nil)
