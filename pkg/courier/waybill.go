package courier

import (
	"context"
)

// WaybillParty is the sender or receiver block on a waybill. Contact
// and address are omitted for senders unless explicitly requested.
type WaybillParty struct {
	Name    string
	Contact string
	Address string
}

// WaybillMoney is a cash-on-delivery amount.
type WaybillMoney struct {
	Amount   float64
	Currency string
}

// WaybillData is the structured input handed to a label renderer.
type WaybillData struct {
	TrackingNumber string
	ServiceType    string
	Weight         float64
	Sender         WaybillParty
	Receiver       WaybillParty
	COD            WaybillMoney
	DeliveryDate   string
	Comments       string
}

// Waybill is a rendered label document.
type Waybill struct {
	TrackingNumber string
	ContentType    string
	Data           []byte
	Path           string // set when the renderer stores the document
}

// WaybillRenderer renders one label document from structured shipment
// data. Rendering internals (PDF layout, barcodes) are outside this
// package; implementations are treated as opaque synchronous functions.
type WaybillRenderer interface {
	Render(ctx context.Context, data *WaybillData) (*Waybill, error)
}

// RendererFunc adapts a function to the WaybillRenderer interface.
type RendererFunc func(ctx context.Context, data *WaybillData) (*Waybill, error)

func (f RendererFunc) Render(ctx context.Context, data *WaybillData) (*Waybill, error) {
	return f(ctx, data)
}

// NewCarrierRenderer returns a renderer backed by the carrier's own
// waybill endpoint. The structured data is ignored beyond the tracking
// number; the carrier renders from its own record.
func NewCarrierRenderer(c Courier, showShipperDetails bool) WaybillRenderer {
	return RendererFunc(func(ctx context.Context, data *WaybillData) (*Waybill, error) {
		doc, err := c.GenerateWaybill(ctx, &WaybillRequest{
			TrackingNumber:     data.TrackingNumber,
			ShowShipperDetails: showShipperDetails,
		})
		if err != nil {
			return nil, err
		}
		return &Waybill{
			TrackingNumber: data.TrackingNumber,
			ContentType:    "application/pdf",
			Data:           doc,
		}, nil
	})
}
