package courier

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for orchestration preconditions.
var (
	// ErrMissingTrackingPrefix indicates a request carries a
	// requested tracking number but no account prefix is configured.
	ErrMissingTrackingPrefix = errors.New("requested tracking numbers require an account prefix")

	// ErrTooManyWaybills indicates the per-call waybill cap was hit.
	ErrTooManyWaybills = errors.New("waybill batch exceeds the 100 document limit")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)

// BatchError converts a failed batch Outcome back into an error at the
// strict-mode boundary. The Outcome keeps the full partition for
// callers that want it.
type BatchError struct {
	Op       string
	Outcome  *Outcome[*OrderResult]
	Messages []string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: %d of %d orders failed: %s",
		e.Op, e.Outcome.Stats.Failed, e.Outcome.Stats.Total, strings.Join(e.Messages, ", "))
}

// ReconciliationKind classifies a tracking-number reconciliation failure.
type ReconciliationKind string

const (
	// ReconciliationUnexpected: the carrier echoed a requested
	// identifier the caller never asked for.
	ReconciliationUnexpected ReconciliationKind = "unexpected"
	// ReconciliationUnused: a requested identifier was never
	// acknowledged by the carrier.
	ReconciliationUnused ReconciliationKind = "unused"
	// ReconciliationMismatch: the carrier substituted a different
	// tracking number for a requested identifier.
	ReconciliationMismatch ReconciliationKind = "mismatch"
)

// ReconciliationError reports that a carrier-assigned tracking number
// disagrees with a caller-requested one. All orders created in the same
// call have been cancelled (or cancellation was attempted) before this
// error is raised.
type ReconciliationError struct {
	Kind      ReconciliationKind
	Requested string // prefix + requested identifier
	Used      string // carrier-returned tracking number, if any
}

func (e *ReconciliationError) Error() string {
	switch e.Kind {
	case ReconciliationUnexpected:
		return fmt.Sprintf("carrier returned unrequested tracking number %s", e.Used)
	case ReconciliationUnused:
		return fmt.Sprintf("carrier never used requested tracking number %s", e.Requested)
	default:
		return fmt.Sprintf("carrier used tracking number %s instead of requested %s", e.Used, e.Requested)
	}
}

// Is matches ReconciliationErrors by kind.
func (e *ReconciliationError) Is(target error) bool {
	t, ok := target.(*ReconciliationError)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// CompensationError reports that compensating cancellation itself
// failed: some orders now exist on the carrier side with no caller
// record of success. Manual reconciliation is required.
type CompensationError struct {
	Cause          error    // what triggered the rollback
	CancelErrors   []string // failures from the cancellation sub-batch
	CancelledCount int
	TotalCount     int
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf(
		"manual reconciliation required: cancelled only %d of %d created orders after %v (cancellation failures: %s)",
		e.CancelledCount, e.TotalCount, e.Cause, strings.Join(e.CancelErrors, ", "))
}

func (e *CompensationError) Unwrap() error {
	return e.Cause
}
