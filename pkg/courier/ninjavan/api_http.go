package ninjavan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tournevent/courier/pkg/courier/pipeline"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

// HTTPAPIClient is the production implementation of APIClient. Every
// call goes through the invocation pipeline: input validation, one
// transport call, content-type body parsing, error translation, output
// validation.
type HTTPAPIClient struct {
	baseURL     string
	countryCode string
	httpClient  *http.Client
	logger      *otelzap.Logger
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL     string
	CountryCode string // lowercase ISO country, e.g. "sg", "my"
	Timeout     time.Duration
	Logger      *otelzap.Logger
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL:     cfg.BaseURL,
		countryCode: cfg.CountryCode,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: cfg.Logger,
	}
}

// RequestToken exchanges client credentials for an access token.
// POST /{cc}/2.0/oauth/access_token
func (c *HTTPAPIClient) RequestToken(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	ep := pipeline.Endpoint[*TokenRequest, *TokenResponse]{
		Name:          "get token",
		ValidateInput: validateTokenRequest,
		Decode:        decodeTokenResponse,
		SuccessCode:   http.StatusOK,
	}
	endpoint := fmt.Sprintf("%s/%s/2.0/oauth/access_token", c.baseURL, c.countryCode)
	return pipeline.Invoke(ctx, ep, req, func(ctx context.Context, in *TokenRequest) (*pipeline.Response, error) {
		return c.do(ctx, http.MethodPost, endpoint, in, "")
	}, c.logger)
}

// CreateOrder creates a new delivery order.
// POST /{cc}/4.0/orders
func (c *HTTPAPIClient) CreateOrder(ctx context.Context, req *OrderBody, auth string) (*OrderResponse, error) {
	ep := pipeline.Endpoint[*OrderBody, *OrderResponse]{
		Name:          "create order",
		ValidateInput: validateOrderBody,
		Decode:        decodeOrderResponse,
		SuccessCode:   http.StatusOK,
	}
	endpoint := fmt.Sprintf("%s/%s/4.0/orders", c.baseURL, c.countryCode)
	return pipeline.Invoke(ctx, ep, req, func(ctx context.Context, in *OrderBody) (*pipeline.Response, error) {
		return c.do(ctx, http.MethodPost, endpoint, in, auth)
	}, c.logger)
}

// CancelOrder cancels an order by tracking number.
// DELETE /{cc}/2.2/orders/{tn}
func (c *HTTPAPIClient) CancelOrder(ctx context.Context, trackingNumber string, auth string) (*CancelResponse, error) {
	ep := pipeline.Endpoint[string, *CancelResponse]{
		Name:          "cancel order",
		ValidateInput: validateTrackingNumber,
		Decode:        decodeCancelResponse,
		SuccessCode:   http.StatusOK,
	}
	return pipeline.Invoke(ctx, ep, trackingNumber, func(ctx context.Context, tn string) (*pipeline.Response, error) {
		endpoint := fmt.Sprintf("%s/%s/2.2/orders/%s", c.baseURL, c.countryCode, url.PathEscape(tn))
		return c.do(ctx, http.MethodDelete, endpoint, nil, auth)
	}, c.logger)
}

// GetWaybill fetches the rendered waybill PDF. The carrier returns an
// empty body until the order is fully processed on its side.
// GET /{cc}/2.0/reports/waybill?h={h}&tids={tn}
func (c *HTTPAPIClient) GetWaybill(ctx context.Context, trackingNumber string, hideShipper bool, auth string) ([]byte, error) {
	ep := pipeline.Endpoint[string, []byte]{
		Name:          "generate waybill",
		ValidateInput: validateTrackingNumber,
		Decode:        decodeWaybill,
		SuccessCode:   http.StatusOK,
		Exceptional:   true,
	}
	return pipeline.Invoke(ctx, ep, trackingNumber, func(ctx context.Context, tn string) (*pipeline.Response, error) {
		h := 0
		if hideShipper {
			h = 1
		}
		endpoint := fmt.Sprintf("%s/%s/2.0/reports/waybill?h=%d&tids=%s",
			c.baseURL, c.countryCode, h, url.QueryEscape(tn))
		return c.do(ctx, http.MethodGet, endpoint, nil, auth)
	}, c.logger)
}

// GetTracking fetches tracking events for one order.
// GET /{cc}/1.0/orders/tracking-events/{tn}
func (c *HTTPAPIClient) GetTracking(ctx context.Context, trackingNumber string, auth string) (*TrackingResponse, error) {
	ep := pipeline.Endpoint[string, *TrackingResponse]{
		Name:          "track order",
		ValidateInput: validateTrackingNumber,
		Decode:        decodeTrackingResponse,
		SuccessCode:   http.StatusOK,
	}
	return pipeline.Invoke(ctx, ep, trackingNumber, func(ctx context.Context, tn string) (*pipeline.Response, error) {
		endpoint := fmt.Sprintf("%s/%s/1.0/orders/tracking-events/%s",
			c.baseURL, c.countryCode, url.PathEscape(tn))
		return c.do(ctx, http.MethodGet, endpoint, nil, auth)
	}, c.logger)
}

// GetTrackingBatch fetches tracking events for several orders, passed
// as repeated tracking_number query parameters.
// GET /{cc}/1.0/orders/tracking-events
func (c *HTTPAPIClient) GetTrackingBatch(ctx context.Context, trackingNumbers []string, auth string) (*TrackingBatchResponse, error) {
	ep := pipeline.Endpoint[[]string, *TrackingBatchResponse]{
		Name:          "track orders",
		ValidateInput: validateTrackingNumbers,
		Decode:        decodeTrackingBatchResponse,
		SuccessCode:   http.StatusOK,
	}
	return pipeline.Invoke(ctx, ep, trackingNumbers, func(ctx context.Context, tns []string) (*pipeline.Response, error) {
		query := url.Values{}
		for _, tn := range tns {
			query.Add("tracking_number", tn)
		}
		endpoint := fmt.Sprintf("%s/%s/1.0/orders/tracking-events?%s",
			c.baseURL, c.countryCode, query.Encode())
		return c.do(ctx, http.MethodGet, endpoint, nil, auth)
	}, c.logger)
}

// do performs one HTTP request and wraps the raw response for the
// pipeline. It is the transport: it never retries and never interprets
// status codes.
func (c *HTTPAPIClient) do(ctx context.Context, method, endpoint string, body interface{}, auth string) (*pipeline.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "courier-bridge/1.0")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &pipeline.Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

var _ APIClient = (*HTTPAPIClient)(nil)
