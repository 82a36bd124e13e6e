package courier

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Orchestrator runs batch operations against one carrier.
type Orchestrator struct {
	courier Courier
	logger  *otelzap.Logger
}

// NewOrchestrator creates an orchestrator for the given carrier. A nil
// logger disables logging.
func NewOrchestrator(c Courier, logger *otelzap.Logger) *Orchestrator {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	return &Orchestrator{courier: c, logger: logger}
}

// CreateOrders creates every order concurrently and waits for all calls
// to settle; it never short-circuits on the first failure. The token is
// fetched once up front when nil and shared read-only across the
// fan-out; freshness is not re-checked mid-batch. Partial failure is
// returned as data. In strict mode any failure triggers cancellation of
// exactly the fulfilled subset, reported in Outcome.Cancelation.
//
// The returned error is non-nil only when the batch could not start at
// all (token fetch failure).
func (o *Orchestrator) CreateOrders(ctx context.Context, reqs []*OrderRequest, tok *Token, strict bool) (*Outcome[*OrderResult], error) {
	if tok == nil {
		var err error
		if tok, err = o.courier.GetToken(ctx); err != nil {
			return nil, err
		}
	}

	o.logger.Info("creating orders",
		zap.Int("total", len(reqs)),
		zap.Bool("strict", strict),
	)

	results := make([]*OrderResult, len(reqs))
	failures := make([]error, len(reqs))

	g := new(errgroup.Group)
	for i, req := range reqs {
		g.Go(func() error {
			results[i], failures[i] = o.courier.CreateOrder(ctx, req, tok)
			return nil
		})
	}
	g.Wait()

	outcome := partition(results, failures)
	if outcome.OK {
		o.logger.Info("all orders created", zap.Int("total", outcome.Stats.Total))
		return outcome, nil
	}

	o.logger.Error("some orders failed",
		zap.Int("total", outcome.Stats.Total),
		zap.Int("failed", outcome.Stats.Failed),
	)

	if !strict {
		return outcome, nil
	}

	// Strict mode: reverse the fulfilled subset. Cancellation failures
	// are never retried here; the nested outcome carries them.
	ids := make([]string, len(outcome.Data))
	for i, res := range outcome.Data {
		ids[i] = res.TrackingNumber
	}
	cancelation, err := o.CancelOrders(ctx, ids, tok)
	if err != nil {
		cancelation = &Outcome[*CancelResult]{
			Stats:  Stats{Total: len(ids), Failed: len(ids)},
			Errors: []string{err.Error()},
		}
	}
	outcome.Cancelation = cancelation
	return outcome, nil
}

// CancelOrders cancels every tracking number concurrently and waits for
// full settlement. Mirrors CreateOrders without the compensation
// branch: cancellation failures are reported, never auto-retried.
func (o *Orchestrator) CancelOrders(ctx context.Context, trackingNumbers []string, tok *Token) (*Outcome[*CancelResult], error) {
	if tok == nil {
		var err error
		if tok, err = o.courier.GetToken(ctx); err != nil {
			return nil, err
		}
	}

	o.logger.Info("cancelling orders",
		zap.Int("total", len(trackingNumbers)),
		zap.Strings("tracking_numbers", trackingNumbers),
	)

	results := make([]*CancelResult, len(trackingNumbers))
	failures := make([]error, len(trackingNumbers))

	g := new(errgroup.Group)
	for i, tn := range trackingNumbers {
		g.Go(func() error {
			results[i], failures[i] = o.courier.CancelOrder(ctx, tn, tok)
			return nil
		})
	}
	g.Wait()

	outcome := partition(results, failures)
	if outcome.OK {
		o.logger.Info("all orders cancelled", zap.Int("total", outcome.Stats.Total))
	} else {
		o.logger.Error("some cancellations failed",
			zap.Int("total", outcome.Stats.Total),
			zap.Int("failed", outcome.Stats.Failed),
		)
	}
	return outcome, nil
}

// partition splits settled results into an Outcome. Invariant:
// Stats.Success + Stats.Failed == Stats.Total == len(results).
func partition[T any](results []T, failures []error) *Outcome[T] {
	out := &Outcome[T]{Stats: Stats{Total: len(results)}}
	for i, err := range failures {
		if err != nil {
			out.Stats.Failed++
			out.Errors = append(out.Errors, err.Error())
			continue
		}
		out.Stats.Success++
		out.Data = append(out.Data, results[i])
	}
	out.OK = out.Stats.Failed == 0
	return out
}
