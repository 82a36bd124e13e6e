package courier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/courier/pkg/courier"
	"github.com/tournevent/courier/pkg/courier/mock"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := courier.NewRegistry()
	registry.Register(mock.New("alpha"))
	registry.Register(mock.New("beta"))

	assert.Equal(t, 2, registry.Count())
	assert.ElementsMatch(t, []string{"alpha", "beta"}, registry.Names())

	c, err := registry.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", c.Name())
}

func TestRegistry_GetUnknownCarrier(t *testing.T) {
	registry := courier.NewRegistry()

	_, err := registry.Get("nope")
	assert.ErrorIs(t, err, courier.ErrCarrierNotFound)
}

func TestRegistry_TrackAll(t *testing.T) {
	registry := courier.NewRegistry()
	registry.Register(mock.New("alpha"))

	broken := mock.New("beta")
	broken.OnTrackOrder = func(ctx context.Context, tn string) (*courier.TrackingInfo, error) {
		return nil, errors.New("unknown tracking number")
	}
	registry.Register(broken)

	results, errs := registry.TrackAll(context.Background(), "A123456789")

	require.Len(t, results, 1)
	assert.Equal(t, "A123456789", results[0].TrackingNumber)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "beta")
}

func TestRegistry_TrackAllEmpty(t *testing.T) {
	registry := courier.NewRegistry()

	results, errs := registry.TrackAll(context.Background(), "A123456789")
	assert.Empty(t, results)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], courier.ErrCarrierNotFound)
}
