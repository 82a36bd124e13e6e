package courier_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/courier/pkg/courier"
	"github.com/tournevent/courier/pkg/courier/mock"
)

func orderReq(rtn string) *courier.OrderRequest {
	return &courier.OrderRequest{
		ServiceType:             courier.ServiceParcel,
		ServiceLevel:            courier.LevelStandard,
		RequestedTrackingNumber: rtn,
		From: courier.Contact{
			Name:  "Warehouse SG",
			Phone: "+6591234567",
			Address: courier.Address{
				Line1:       "30 Jalan Kilang Barat",
				PostalCode:  "159363",
				CountryCode: "SG",
			},
		},
		To: courier.Contact{
			Name:  "Jane Tan",
			Phone: "+6598765432",
			Address: courier.Address{
				Line1:       "1 Raffles Place",
				PostalCode:  "048616",
				CountryCode: "SG",
			},
		},
		Parcel: courier.ParcelJob{
			DeliveryStartDate: "2026-09-15",
			DeliveryTimeslot:  courier.Timeslot{StartTime: "09:00", EndTime: "22:00"},
			Dimensions:        courier.Dimensions{Weight: 1.5},
			PickupRequired:    true,
		},
	}
}

func TestCreateOrders_AllSucceed(t *testing.T) {
	client := mock.New("test")
	orch := courier.NewOrchestrator(client, nil)

	reqs := []*courier.OrderRequest{orderReq("ORDER00001"), orderReq("ORDER00002"), orderReq("ORDER00003")}

	outcome, err := orch.CreateOrders(context.Background(), reqs, nil, false)

	require.NoError(t, err)
	assert.True(t, outcome.OK)
	assert.Equal(t, courier.Stats{Total: 3, Success: 3}, outcome.Stats)
	assert.Len(t, outcome.Data, 3)
	assert.Empty(t, outcome.Errors)
	assert.Nil(t, outcome.Cancelation)
}

func TestCreateOrders_PartialFailureIsData(t *testing.T) {
	client := mock.New("test")
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		if req.RequestedTrackingNumber == "ORDER00002" {
			return nil, errors.New("address unserviceable")
		}
		return &courier.OrderResult{TrackingNumber: req.RequestedTrackingNumber}, nil
	}
	orch := courier.NewOrchestrator(client, nil)

	reqs := []*courier.OrderRequest{orderReq("ORDER00001"), orderReq("ORDER00002"), orderReq("ORDER00003")}

	outcome, err := orch.CreateOrders(context.Background(), reqs, nil, false)

	require.NoError(t, err)
	assert.False(t, outcome.OK)
	assert.Equal(t, courier.Stats{Total: 3, Success: 2, Failed: 1}, outcome.Stats)
	assert.Len(t, outcome.Data, 2)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "unserviceable")
	assert.Nil(t, outcome.Cancelation, "non-strict mode never compensates")
}

func TestCreateOrders_StrictCancelsFulfilledSubset(t *testing.T) {
	client := mock.New("test")
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		if req.RequestedTrackingNumber == "ORDER00002" {
			return nil, errors.New("address unserviceable")
		}
		return &courier.OrderResult{TrackingNumber: req.RequestedTrackingNumber}, nil
	}

	var mu sync.Mutex
	var cancelled []string
	client.OnCancelOrder = func(ctx context.Context, tn string, tok *courier.Token) (*courier.CancelResult, error) {
		mu.Lock()
		cancelled = append(cancelled, tn)
		mu.Unlock()
		return &courier.CancelResult{TrackingNumber: tn, Status: "Cancelled"}, nil
	}

	orch := courier.NewOrchestrator(client, nil)
	reqs := []*courier.OrderRequest{orderReq("ORDER00001"), orderReq("ORDER00002"), orderReq("ORDER00003")}

	outcome, err := orch.CreateOrders(context.Background(), reqs, nil, true)

	require.NoError(t, err)
	assert.False(t, outcome.OK)

	require.NotNil(t, outcome.Cancelation)
	assert.True(t, outcome.Cancelation.OK)
	assert.Equal(t, 2, outcome.Cancelation.Stats.Total)

	// Exactly the fulfilled subset is reversed, never the failed order.
	assert.ElementsMatch(t, []string{"ORDER00001", "ORDER00003"}, cancelled)
}

func TestCreateOrders_StrictCompensationFailureReported(t *testing.T) {
	client := mock.New("test")
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		if req.RequestedTrackingNumber == "ORDER00002" {
			return nil, errors.New("address unserviceable")
		}
		return &courier.OrderResult{TrackingNumber: req.RequestedTrackingNumber}, nil
	}
	client.OnCancelOrder = func(ctx context.Context, tn string, tok *courier.Token) (*courier.CancelResult, error) {
		if tn == "ORDER00003" {
			return nil, errors.New("already picked up")
		}
		return &courier.CancelResult{TrackingNumber: tn, Status: "Cancelled"}, nil
	}

	orch := courier.NewOrchestrator(client, nil)
	reqs := []*courier.OrderRequest{orderReq("ORDER00001"), orderReq("ORDER00002"), orderReq("ORDER00003")}

	outcome, err := orch.CreateOrders(context.Background(), reqs, nil, true)

	require.NoError(t, err)
	require.NotNil(t, outcome.Cancelation)
	assert.False(t, outcome.Cancelation.OK)
	assert.Equal(t, courier.Stats{Total: 2, Success: 1, Failed: 1}, outcome.Cancelation.Stats)
	assert.Contains(t, strings.Join(outcome.Cancelation.Errors, " "), "already picked up")
}

func TestCreateOrders_TokenFetchFailureAbortsBatch(t *testing.T) {
	client := mock.New("test")
	client.OnGetToken = func(ctx context.Context) (*courier.Token, error) {
		return nil, errors.New("invalid client credentials")
	}
	created := 0
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		created++
		return &courier.OrderResult{TrackingNumber: "X"}, nil
	}

	orch := courier.NewOrchestrator(client, nil)

	_, err := orch.CreateOrders(context.Background(), []*courier.OrderRequest{orderReq("ORDER00001")}, nil, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid client credentials")
	assert.Zero(t, created, "no order call may start without a token")
}

func TestCreateOrders_CallerTokenSkipsFetch(t *testing.T) {
	client := mock.New("test")
	fetches := 0
	client.OnGetToken = func(ctx context.Context) (*courier.Token, error) {
		fetches++
		return nil, errors.New("should not be called")
	}

	orch := courier.NewOrchestrator(client, nil)
	tok := &courier.Token{AccessToken: "caller-supplied", TokenType: "bearer"}

	outcome, err := orch.CreateOrders(context.Background(), []*courier.OrderRequest{orderReq("ORDER00001")}, tok, false)

	require.NoError(t, err)
	assert.True(t, outcome.OK)
	assert.Zero(t, fetches)
}

func TestCancelOrders_PartialFailure(t *testing.T) {
	client := mock.New("test")
	client.OnCancelOrder = func(ctx context.Context, tn string, tok *courier.Token) (*courier.CancelResult, error) {
		if tn == "GONE" {
			return nil, errors.New("order not found")
		}
		return &courier.CancelResult{TrackingNumber: tn, Status: "Cancelled"}, nil
	}

	orch := courier.NewOrchestrator(client, nil)

	outcome, err := orch.CancelOrders(context.Background(), []string{"A123456789", "GONE", "B123456789"}, nil)

	require.NoError(t, err)
	assert.False(t, outcome.OK)
	assert.Equal(t, courier.Stats{Total: 3, Success: 2, Failed: 1}, outcome.Stats)
	assert.Contains(t, outcome.Errors[0], "not found")
}

func TestCreateOrders_EmptyBatch(t *testing.T) {
	client := mock.New("test")
	orch := courier.NewOrchestrator(client, nil)

	outcome, err := orch.CreateOrders(context.Background(), nil, nil, true)

	require.NoError(t, err)
	assert.True(t, outcome.OK)
	assert.Zero(t, outcome.Stats.Total)
}
