package ninjavan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/courier/pkg/courier/ninjavan"
)

func validOrderBody() *ninjavan.OrderBody {
	return &ninjavan.OrderBody{
		ServiceType:             "Parcel",
		ServiceLevel:            "Standard",
		RequestedTrackingNumber: "ORDER00001",
		From: ninjavan.PersonBody{
			Name:        "Warehouse SG",
			PhoneNumber: "+6591234567",
			Address:     ninjavan.AddressBody{Address1: "30 Jalan Kilang Barat"},
		},
		To: ninjavan.PersonBody{
			Name:        "Jane Tan",
			PhoneNumber: "+6598765432",
			Address:     ninjavan.AddressBody{Address1: "1 Raffles Place"},
		},
		ParcelJob: ninjavan.ParcelJobBody{
			DeliveryStartDate: "2026-09-15",
			DeliveryTimeslot:  ninjavan.TimeslotBody{StartTime: "09:00", EndTime: "22:00"},
		},
	}
}

// Input validation runs in the mock exactly as in the HTTP client, so
// the schema rules are exercised through the API surface.
func TestOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ninjavan.OrderBody)
		wantErr string
	}{
		{
			name:   "valid body",
			mutate: func(b *ninjavan.OrderBody) {},
		},
		{
			name:   "no requested tracking number is fine",
			mutate: func(b *ninjavan.OrderBody) { b.RequestedTrackingNumber = "" },
		},
		{
			name:    "missing service type",
			mutate:  func(b *ninjavan.OrderBody) { b.ServiceType = "" },
			wantErr: "service_type",
		},
		{
			name:    "requested tracking number too short",
			mutate:  func(b *ninjavan.OrderBody) { b.RequestedTrackingNumber = "SHORT" },
			wantErr: "9-18 characters",
		},
		{
			name:    "requested tracking number too long",
			mutate:  func(b *ninjavan.OrderBody) { b.RequestedTrackingNumber = "THISISWAYTOOLONG123" },
			wantErr: "9-18 characters",
		},
		{
			name:    "requested tracking number bad characters",
			mutate:  func(b *ninjavan.OrderBody) { b.RequestedTrackingNumber = "ORDER 0001" },
			wantErr: "invalid characters",
		},
		{
			name:   "hyphenated tracking number",
			mutate: func(b *ninjavan.OrderBody) { b.RequestedTrackingNumber = "ORDER-0001" },
		},
		{
			name:    "recipient name too short",
			mutate:  func(b *ninjavan.OrderBody) { b.To.Name = "Jo" },
			wantErr: "to.name",
		},
		{
			name: "recipient without phone or email",
			mutate: func(b *ninjavan.OrderBody) {
				b.To.PhoneNumber = ""
				b.To.Email = ""
			},
			wantErr: "phone number or email",
		},
		{
			name: "email alone is enough",
			mutate: func(b *ninjavan.OrderBody) {
				b.To.PhoneNumber = ""
				b.To.Email = "jane@example.com"
			},
		},
		{
			name:    "missing address line",
			mutate:  func(b *ninjavan.OrderBody) { b.From.Address.Address1 = "" },
			wantErr: "from.address.address1",
		},
		{
			name:    "bad delivery date",
			mutate:  func(b *ninjavan.OrderBody) { b.ParcelJob.DeliveryStartDate = "15/09/2026" },
			wantErr: "yyyy-MM-dd",
		},
		{
			name:    "bad timeslot",
			mutate:  func(b *ninjavan.OrderBody) { b.ParcelJob.DeliveryTimeslot.StartTime = "9am" },
			wantErr: "HH:MM",
		},
	}

	mockAPI := ninjavan.NewMockAPIClient()
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validOrderBody()
			tt.mutate(body)

			_, err := mockAPI.CreateOrder(ctx, body, "Bearer tok")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTokenRequestValidation(t *testing.T) {
	mockAPI := ninjavan.NewMockAPIClient()
	ctx := context.Background()

	_, err := mockAPI.RequestToken(ctx, &ninjavan.TokenRequest{
		ClientID:     "id",
		ClientSecret: "secret",
		GrantType:    "password",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grant_type")

	_, err = mockAPI.RequestToken(ctx, &ninjavan.TokenRequest{
		ClientID:     "id",
		ClientSecret: "secret",
		GrantType:    "client_credentials",
	})
	assert.NoError(t, err)
}
