package ninjavan

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/tournevent/courier/pkg/courier/pipeline"
)

// Validation is parse-or-fail: malformed input and output are rejected,
// never coerced.

var (
	trackingNumberRe = regexp.MustCompile(`^([a-zA-Z0-9]+-)*[a-zA-Z0-9]+$`)
	deliveryDateRe   = regexp.MustCompile(`^[12]\d{3}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
	timeslotRe       = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)
)

func validateTokenRequest(req *TokenRequest) error {
	if req.ClientID == "" {
		return errors.New("client_id is required")
	}
	if req.ClientSecret == "" {
		return errors.New("client_secret is required")
	}
	if req.GrantType != "client_credentials" {
		return fmt.Errorf("unsupported grant_type %q", req.GrantType)
	}
	return nil
}

func validatePerson(field string, p PersonBody) error {
	if len(p.Name) < 3 {
		return fmt.Errorf("%s.name must be at least 3 characters", field)
	}
	if p.PhoneNumber == "" && p.Email == "" {
		return fmt.Errorf("%s requires a phone number or email", field)
	}
	if p.Address.Address1 == "" {
		return fmt.Errorf("%s.address.address1 is required", field)
	}
	return nil
}

func validateOrderBody(req *OrderBody) error {
	if req.ServiceType == "" {
		return errors.New("service_type is required")
	}
	if req.ServiceLevel == "" {
		return errors.New("service_level is required")
	}
	if rtn := req.RequestedTrackingNumber; rtn != "" {
		if len(rtn) < 9 || len(rtn) > 18 {
			return fmt.Errorf("requested_tracking_number %q must be 9-18 characters", rtn)
		}
		if !trackingNumberRe.MatchString(rtn) {
			return fmt.Errorf("requested_tracking_number %q has invalid characters", rtn)
		}
	}
	if err := validatePerson("from", req.From); err != nil {
		return err
	}
	if err := validatePerson("to", req.To); err != nil {
		return err
	}
	if !deliveryDateRe.MatchString(req.ParcelJob.DeliveryStartDate) {
		return fmt.Errorf("delivery_start_date %q must be yyyy-MM-dd", req.ParcelJob.DeliveryStartDate)
	}
	slot := req.ParcelJob.DeliveryTimeslot
	if !timeslotRe.MatchString(slot.StartTime) || !timeslotRe.MatchString(slot.EndTime) {
		return fmt.Errorf("delivery_timeslot %q-%q must be HH:MM", slot.StartTime, slot.EndTime)
	}
	return nil
}

func validateTrackingNumber(tn string) error {
	if tn == "" {
		return errors.New("tracking number is required")
	}
	return nil
}

func validateTrackingNumbers(tns []string) error {
	if len(tns) == 0 {
		return errors.New("at least one tracking number is required")
	}
	for _, tn := range tns {
		if tn == "" {
			return errors.New("tracking numbers must be non-empty")
		}
	}
	return nil
}

func decodeJSON[T any](body pipeline.Body, out *T) error {
	if body.Kind != pipeline.BodyJSON {
		return fmt.Errorf("expected JSON body, got kind %d", body.Kind)
	}
	return json.Unmarshal(body.JSON, out)
}

func decodeTokenResponse(body pipeline.Body) (*TokenResponse, error) {
	var resp TokenResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("missing access_token")
	}
	if resp.TokenType == "" {
		return nil, errors.New("missing token_type")
	}
	if resp.ExpiresIn <= 0 {
		return nil, fmt.Errorf("invalid expires_in %d", resp.ExpiresIn)
	}
	return &resp, nil
}

func decodeOrderResponse(body pipeline.Body) (*OrderResponse, error) {
	var resp OrderResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, err
	}
	if resp.TrackingNumber == "" {
		return nil, errors.New("missing tracking_number")
	}
	return &resp, nil
}

// decodeCancelResponse accepts any of the carrier's cancellation body
// variants; every field is optional.
func decodeCancelResponse(body pipeline.Body) (*CancelResponse, error) {
	var resp CancelResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func decodeTrackingResponse(body pipeline.Body) (*TrackingResponse, error) {
	var resp TrackingResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, err
	}
	if resp.Events == nil {
		resp.Events = []TrackingEventBody{}
	}
	return &resp, nil
}

func decodeTrackingBatchResponse(body pipeline.Body) (*TrackingBatchResponse, error) {
	var resp TrackingBatchResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// decodeWaybill passes the binary payload through untouched. The
// endpoint is exceptional: there is no structural schema for PDFs.
func decodeWaybill(body pipeline.Body) ([]byte, error) {
	return body.Raw(), nil
}
