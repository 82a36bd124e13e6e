package courier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// maxWaybillsPerCall caps one express call's label rendering unless
// ExpressOptions.Limitless is set.
const maxWaybillsPerCall = 100

// ExpressOptions configures an express run.
type ExpressOptions struct {
	// TrackingPrefix is the carrier account prefix. Mandatory as soon
	// as any request carries a RequestedTrackingNumber.
	TrackingPrefix string

	// ShowSenderDetails prints sender contact and address on waybills.
	ShowSenderDetails bool

	// Limitless bypasses the per-call waybill cap.
	Limitless bool
}

// ExpressResult is the outcome of a successful express run: the batch
// outcome plus one rendered waybill per order.
type ExpressResult struct {
	*Outcome[*OrderResult]
	Waybills []*Waybill
}

// Express runs the guaranteed-consistent composite operation: strict
// batch creation, tracking-number reconciliation, then waybill
// rendering. Either every order is created with the tracking number the
// caller asked for and a waybill, or none survive.
//
// When a caller requested a tracking identifier, the carrier-returned
// tracking number must equal prefix + identifier exactly. Any deviation
// cancels ALL orders created in this call before the error is raised;
// if that cancellation itself fails the error says so explicitly, since
// the caller must then reconcile with the carrier by hand.
func (o *Orchestrator) Express(ctx context.Context, reqs []*OrderRequest, renderer WaybillRenderer, opts ExpressOptions) (*ExpressResult, error) {
	o.logger.Info("running express", zap.Int("total", len(reqs)))

	// Reconciliation preconditions come before any network call.
	requested := make(map[string]string)
	for _, req := range reqs {
		if req.RequestedTrackingNumber != "" {
			requested[req.RequestedTrackingNumber] = ""
		}
	}
	if len(requested) > 0 && opts.TrackingPrefix == "" {
		return nil, ErrMissingTrackingPrefix
	}
	if !opts.Limitless && len(reqs) > maxWaybillsPerCall {
		return nil, ErrTooManyWaybills
	}

	tok, err := o.courier.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	outcome, err := o.CreateOrders(ctx, reqs, tok, true)
	if err != nil {
		return nil, err
	}
	if !outcome.OK {
		cause := &BatchError{Op: "express create", Outcome: outcome, Messages: outcome.Errors}
		if outcome.Cancelation == nil || !outcome.Cancelation.OK {
			return nil, o.escalate(cause, outcome)
		}
		return nil, cause
	}

	if len(requested) > 0 {
		o.logger.Info("reconciling tracking numbers",
			zap.Int("total", len(reqs)),
			zap.Int("requested", len(requested)),
		)
		if err := o.reconcile(ctx, outcome, requested, opts.TrackingPrefix, tok); err != nil {
			return nil, err
		}
	}

	waybills := make([]*Waybill, 0, len(outcome.Data))
	for _, res := range outcome.Data {
		wb, err := renderer.Render(ctx, waybillData(res, reqs, opts.ShowSenderDetails))
		if err != nil {
			return nil, fmt.Errorf("rendering waybill for %s: %w", res.TrackingNumber, err)
		}
		waybills = append(waybills, wb)
	}

	return &ExpressResult{Outcome: outcome, Waybills: waybills}, nil
}

// reconcile verifies every caller-requested identifier against the
// carrier-returned tracking numbers. On any violation it cancels all
// just-created orders and raises the violation (or an escalated
// CompensationError when the cancellation fails too).
func (o *Orchestrator) reconcile(ctx context.Context, outcome *Outcome[*OrderResult], requested map[string]string, prefix string, tok *Token) error {
	for _, res := range outcome.Data {
		if res.RequestedTrackingNumber == "" {
			continue
		}
		if _, ok := requested[res.RequestedTrackingNumber]; !ok {
			o.logger.Error("unrequested tracking number",
				zap.String("used", res.TrackingNumber),
			)
			return o.reverse(ctx, outcome, tok, &ReconciliationError{
				Kind: ReconciliationUnexpected,
				Used: res.TrackingNumber,
			})
		}
		requested[res.RequestedTrackingNumber] = res.TrackingNumber
	}

	for id, used := range requested {
		want := prefix + id
		if used == "" {
			o.logger.Error("unused tracking number", zap.String("requested", want))
			return o.reverse(ctx, outcome, tok, &ReconciliationError{
				Kind:      ReconciliationUnused,
				Requested: want,
			})
		}
		if used != want {
			o.logger.Error("different tracking number",
				zap.String("requested", want),
				zap.String("used", used),
			)
			return o.reverse(ctx, outcome, tok, &ReconciliationError{
				Kind:      ReconciliationMismatch,
				Requested: want,
				Used:      used,
			})
		}
	}
	return nil
}

// reverse cancels every order in the outcome and returns cause, or an
// escalated CompensationError when the cancellation sub-batch fails.
func (o *Orchestrator) reverse(ctx context.Context, outcome *Outcome[*OrderResult], tok *Token, cause error) error {
	ids := make([]string, len(outcome.Data))
	for i, res := range outcome.Data {
		ids[i] = res.TrackingNumber
	}

	cancelation, err := o.CancelOrders(ctx, ids, tok)
	if err != nil {
		return &CompensationError{
			Cause:        cause,
			CancelErrors: []string{err.Error()},
			TotalCount:   len(ids),
		}
	}
	if !cancelation.OK {
		return &CompensationError{
			Cause:          cause,
			CancelErrors:   cancelation.Errors,
			CancelledCount: cancelation.Stats.Success,
			TotalCount:     cancelation.Stats.Total,
		}
	}
	return cause
}

// escalate wraps a strict-mode batch failure whose built-in rollback
// did not fully succeed.
func (o *Orchestrator) escalate(cause error, outcome *Outcome[*OrderResult]) error {
	comp := &CompensationError{
		Cause:      cause,
		TotalCount: outcome.Stats.Success,
	}
	if outcome.Cancelation != nil {
		comp.CancelErrors = outcome.Cancelation.Errors
		comp.CancelledCount = outcome.Cancelation.Stats.Success
	}
	return comp
}

// waybillData flattens one created order into renderer input. Response
// addresses can come back without postcodes; those are matched back to
// the submitted request by the first address line.
func waybillData(res *OrderResult, reqs []*OrderRequest, showSender bool) *WaybillData {
	data := &WaybillData{
		TrackingNumber: res.TrackingNumber,
		ServiceType:    string(res.ServiceType),
	}

	if res.Parcel != nil {
		data.Weight = res.Parcel.Dimensions.Weight
		data.Comments = res.Parcel.Instructions
		data.COD = WaybillMoney{Amount: res.Parcel.CashOnDelivery}
		data.DeliveryDate = formatDeliveryDate(res.Parcel)
	}

	if res.To != nil {
		contact := res.To.Phone
		if contact == "" {
			contact = res.To.Email
		}
		data.Receiver = WaybillParty{
			Name:    res.To.Name,
			Contact: contact,
			Address: mergeAddress(res.To.Address, reqs, false),
		}
	}
	if res.From != nil {
		data.Sender = WaybillParty{Name: res.From.Name}
		if showSender {
			contact := res.From.Phone
			if contact == "" {
				contact = res.From.Email
			}
			data.Sender.Contact = contact
			data.Sender.Address = mergeAddress(res.From.Address, reqs, true)
		}
	}

	return data
}

// formatDeliveryDate renders "02 Jan 2006 09:00 - 22:00".
func formatDeliveryDate(p *ParcelJob) string {
	date := p.DeliveryStartDate
	if t, err := time.Parse("2006-01-02", p.DeliveryStartDate); err == nil {
		date = t.Format("02 Jan 2006")
	}
	slot := p.DeliveryTimeslot
	if slot.StartTime == "" && slot.EndTime == "" {
		return date
	}
	return fmt.Sprintf("%s %s - %s", date, slot.StartTime, slot.EndTime)
}

// mergeAddress synthesizes a single-line address, recovering a missing
// postcode from the original request with the same first address line.
func mergeAddress(addr Address, reqs []*OrderRequest, sender bool) string {
	postcode := addr.PostalCode
	if postcode == "" {
		for _, req := range reqs {
			candidate := req.To.Address
			if sender {
				candidate = req.From.Address
			}
			if candidate.Line1 == addr.Line1 {
				postcode = candidate.PostalCode
				break
			}
		}
	}

	merged := addr.Line1
	if addr.Line2 != "" {
		merged += " " + addr.Line2
	}
	merged += ", " + addr.CountryCode
	if postcode != "" {
		merged += " " + postcode
	}
	return merged
}
