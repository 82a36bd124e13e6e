package courier_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/courier/pkg/courier"
	"github.com/tournevent/courier/pkg/courier/mock"
)

// prefixingClient behaves like the carrier account: the final tracking
// number is the account prefix concatenated with the requested one.
func prefixingClient(prefix string) *mock.Client {
	client := mock.New("test")
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		return &courier.OrderResult{
			TrackingNumber:          prefix + req.RequestedTrackingNumber,
			RequestedTrackingNumber: req.RequestedTrackingNumber,
			ServiceType:             req.ServiceType,
			From:                    &req.From,
			To:                      &req.To,
			Parcel:                  &req.Parcel,
		}, nil
	}
	return client
}

func passthroughRenderer() courier.WaybillRenderer {
	return courier.RendererFunc(func(ctx context.Context, data *courier.WaybillData) (*courier.Waybill, error) {
		return &courier.Waybill{
			TrackingNumber: data.TrackingNumber,
			ContentType:    "application/pdf",
			Data:           []byte("label " + data.TrackingNumber),
		}, nil
	})
}

func TestExpress_Success(t *testing.T) {
	client := prefixingClient("PFX")
	orch := courier.NewOrchestrator(client, nil)

	reqs := []*courier.OrderRequest{orderReq("ABC123456"), orderReq("DEF987654")}

	result, err := orch.Express(context.Background(), reqs, passthroughRenderer(), courier.ExpressOptions{
		TrackingPrefix: "PFX",
	})

	require.NoError(t, err)
	assert.True(t, result.OK)
	require.Len(t, result.Waybills, 2)
	assert.Equal(t, "PFXABC123456", result.Waybills[0].TrackingNumber)
	assert.Equal(t, "application/pdf", result.Waybills[0].ContentType)
}

func TestExpress_MissingPrefixFailsBeforeAnyCall(t *testing.T) {
	client := mock.New("test")
	calls := 0
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		calls++
		return &courier.OrderResult{TrackingNumber: req.RequestedTrackingNumber}, nil
	}
	tokens := 0
	client.OnGetToken = func(ctx context.Context) (*courier.Token, error) {
		tokens++
		return &courier.Token{AccessToken: "t"}, nil
	}

	orch := courier.NewOrchestrator(client, nil)

	_, err := orch.Express(context.Background(), []*courier.OrderRequest{orderReq("ABC123456")},
		passthroughRenderer(), courier.ExpressOptions{})

	require.ErrorIs(t, err, courier.ErrMissingTrackingPrefix)
	assert.Zero(t, calls, "no order may be created")
	assert.Zero(t, tokens, "no token may be fetched")
}

func TestExpress_NoRequestedNumbersSkipsReconciliation(t *testing.T) {
	client := mock.New("test")
	orch := courier.NewOrchestrator(client, nil)

	// No requested identifiers, so no prefix is needed either.
	result, err := orch.Express(context.Background(), []*courier.OrderRequest{orderReq(""), orderReq("")},
		passthroughRenderer(), courier.ExpressOptions{})

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Len(t, result.Waybills, 2)
}

func TestExpress_WaybillCap(t *testing.T) {
	client := mock.New("test")
	orch := courier.NewOrchestrator(client, nil)

	reqs := make([]*courier.OrderRequest, 101)
	for i := range reqs {
		reqs[i] = orderReq("")
	}

	_, err := orch.Express(context.Background(), reqs, passthroughRenderer(), courier.ExpressOptions{})
	require.ErrorIs(t, err, courier.ErrTooManyWaybills)

	// Limitless bypasses the cap.
	result, err := orch.Express(context.Background(), reqs, passthroughRenderer(),
		courier.ExpressOptions{Limitless: true})
	require.NoError(t, err)
	assert.Len(t, result.Waybills, 101)
}

func TestExpress_MismatchCancelsEverything(t *testing.T) {
	client := mock.New("test")
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		tn := "PFX" + req.RequestedTrackingNumber
		if req.RequestedTrackingNumber == "ABC123456" {
			// The carrier substitutes its own number for this one.
			tn = "PFXXYZ999999"
		}
		return &courier.OrderResult{
			TrackingNumber:          tn,
			RequestedTrackingNumber: req.RequestedTrackingNumber,
		}, nil
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
	reqs := []*courier.OrderRequest{orderReq("ABC123456"), orderReq("DEF987654")}

	_, err := orch.Express(context.Background(), reqs, passthroughRenderer(),
		courier.ExpressOptions{TrackingPrefix: "PFX"})

	var rerr *courier.ReconciliationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, courier.ReconciliationMismatch, rerr.Kind)
	assert.Equal(t, "PFXABC123456", rerr.Requested)
	assert.Equal(t, "PFXXYZ999999", rerr.Used)

	// Every order created in this call is rolled back, including the
	// one whose tracking number was correct.
	assert.ElementsMatch(t, []string{"PFXXYZ999999", "PFXDEF987654"}, cancelled)
}

func TestExpress_UnexpectedRequestedNumber(t *testing.T) {
	client := mock.New("test")
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		return &courier.OrderResult{
			TrackingNumber:          "PFXGHOST0001",
			RequestedTrackingNumber: "GHOST0001", // never asked for
		}, nil
	}

	orch := courier.NewOrchestrator(client, nil)
	reqs := []*courier.OrderRequest{orderReq("ABC123456")}

	_, err := orch.Express(context.Background(), reqs, passthroughRenderer(),
		courier.ExpressOptions{TrackingPrefix: "PFX"})

	var rerr *courier.ReconciliationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, courier.ReconciliationUnexpected, rerr.Kind)
}

func TestExpress_UnusedRequestedNumber(t *testing.T) {
	client := mock.New("test")
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		// The carrier drops the requested identifier entirely.
		return &courier.OrderResult{TrackingNumber: "PFXOTHER0001"}, nil
	}

	orch := courier.NewOrchestrator(client, nil)
	reqs := []*courier.OrderRequest{orderReq("ABC123456")}

	_, err := orch.Express(context.Background(), reqs, passthroughRenderer(),
		courier.ExpressOptions{TrackingPrefix: "PFX"})

	var rerr *courier.ReconciliationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, courier.ReconciliationUnused, rerr.Kind)
	assert.Equal(t, "PFXABC123456", rerr.Requested)
}

func TestExpress_CompensationFailureEscalates(t *testing.T) {
	client := mock.New("test")
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		return &courier.OrderResult{
			TrackingNumber:          "PFXWRONG0001",
			RequestedTrackingNumber: req.RequestedTrackingNumber,
		}, nil
	}
	client.OnCancelOrder = func(ctx context.Context, tn string, tok *courier.Token) (*courier.CancelResult, error) {
		return nil, errors.New("cancellation rejected")
	}

	orch := courier.NewOrchestrator(client, nil)
	reqs := []*courier.OrderRequest{orderReq("ABC123456")}

	_, err := orch.Express(context.Background(), reqs, passthroughRenderer(),
		courier.ExpressOptions{TrackingPrefix: "PFX"})

	var comp *courier.CompensationError
	require.ErrorAs(t, err, &comp)
	assert.Contains(t, err.Error(), "manual reconciliation required")

	// The original violation stays reachable through the chain.
	var rerr *courier.ReconciliationError
	assert.ErrorAs(t, err, &rerr)
}

func TestExpress_StrictFailureWithCleanRollbackIsBatchError(t *testing.T) {
	client := mock.New("test")
	client.OnCreateOrder = func(ctx context.Context, req *courier.OrderRequest, tok *courier.Token) (*courier.OrderResult, error) {
		if req.RequestedTrackingNumber == "DEF987654" {
			return nil, errors.New("address unserviceable")
		}
		return &courier.OrderResult{
			TrackingNumber:          "PFX" + req.RequestedTrackingNumber,
			RequestedTrackingNumber: req.RequestedTrackingNumber,
		}, nil
	}

	orch := courier.NewOrchestrator(client, nil)
	reqs := []*courier.OrderRequest{orderReq("ABC123456"), orderReq("DEF987654")}

	_, err := orch.Express(context.Background(), reqs, passthroughRenderer(),
		courier.ExpressOptions{TrackingPrefix: "PFX"})

	var berr *courier.BatchError
	require.ErrorAs(t, err, &berr)
	assert.Contains(t, berr.Error(), "unserviceable")
	assert.Equal(t, 1, berr.Outcome.Stats.Failed)
}

func TestExpress_RendererFailure(t *testing.T) {
	client := prefixingClient("PFX")
	orch := courier.NewOrchestrator(client, nil)

	failing := courier.RendererFunc(func(ctx context.Context, data *courier.WaybillData) (*courier.Waybill, error) {
		return nil, fmt.Errorf("printer on fire")
	})

	_, err := orch.Express(context.Background(), []*courier.OrderRequest{orderReq("ABC123456")},
		failing, courier.ExpressOptions{TrackingPrefix: "PFX"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "printer on fire")
}
