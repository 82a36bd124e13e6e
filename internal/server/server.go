package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/courier/internal/telemetry"
	"github.com/tournevent/courier/pkg/courier"
	"github.com/tournevent/courier/pkg/courier/ninjavan"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the courier bridge.
type Server struct {
	port         int
	registry     *courier.Registry
	orchestrator *courier.Orchestrator
	carrier      courier.Courier
	receiver     *ninjavan.Receiver
	expressOpts  courier.ExpressOptions
	logger       *otelzap.Logger
	metrics      *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port           int
	TrackingPrefix string
	WebhookSecret  string
	Events         []string
}

// New creates a new server instance around one primary carrier.
func New(cfg Config, registry *courier.Registry, carrier courier.Courier, logger *otelzap.Logger) *Server {
	metrics := telemetry.NewMetrics()

	s := &Server{
		port:         cfg.Port,
		registry:     registry,
		orchestrator: courier.NewOrchestrator(carrier, logger),
		carrier:      carrier,
		expressOpts: courier.ExpressOptions{
			TrackingPrefix: cfg.TrackingPrefix,
		},
		logger:  logger,
		metrics: metrics,
	}

	s.receiver = ninjavan.NewReceiver(ninjavan.ReceiverConfig{
		Secret: cfg.WebhookSecret,
		Events: cfg.Events,
		Logger: logger,
		OnEvent: func(ctx context.Context, event *ninjavan.WebhookEvent) {
			metrics.WebhookEvents.WithLabelValues(event.Status).Inc()
		},
		OnRejection: func(ctx context.Context, rejection *ninjavan.WebhookRejection) {
			metrics.WebhookRejections.WithLabelValues(strconv.Itoa(rejection.Code)).Inc()
		},
	})

	return s
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Registered carriers
	mux.HandleFunc("/carriers", s.handleCarriers)

	// Order operations
	mux.HandleFunc("/orders", s.handleCreateOrders)
	mux.HandleFunc("/orders/express", s.handleExpress)
	mux.HandleFunc("/orders/cancel", s.handleCancelOrders)
	mux.HandleFunc("/tracking", s.handleTracking)

	// Carrier webhook deliveries
	mux.HandleFunc("/webhooks/tracking", s.handleWebhook)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"carriers": s.registry.Names()})
}

func (s *Server) handleCreateOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use POST")
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	start := time.Now()
	outcome, err := s.orchestrator.CreateOrders(r.Context(), req.orders(), nil, req.Strict)
	s.metrics.RecordRequest("create_orders", s.carrier.Name(), statusLabel(err), time.Since(start).Seconds())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.metrics.RecordBatch(s.carrier.Name(), outcome.Stats.Success, outcome.Stats.Failed)
	writeJSON(w, http.StatusOK, outcomeResponse(outcome))
}

func (s *Server) handleExpress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use POST")
		return
	}

	var req expressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	opts := s.expressOpts
	opts.ShowSenderDetails = req.ShowSenderDetails
	opts.Limitless = req.Limitless
	renderer := courier.NewCarrierRenderer(s.carrier, req.ShowSenderDetails)

	start := time.Now()
	result, err := s.orchestrator.Express(r.Context(), req.orders(), renderer, opts)
	s.metrics.RecordRequest("express", s.carrier.Name(), statusLabel(err), time.Since(start).Seconds())
	if err != nil {
		var comp *courier.CompensationError
		if errors.As(err, &comp) {
			// The caller must reconcile by hand; surface the full detail.
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":           comp.Error(),
				"cancelled_count": comp.CancelledCount,
				"total_count":     comp.TotalCount,
			})
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.metrics.RecordBatch(s.carrier.Name(), result.Stats.Success, result.Stats.Failed)

	resp := expressResponse{
		outcomeJSON: outcomeResponse(result.Outcome),
		Waybills:    make([]waybillJSON, 0, len(result.Waybills)),
	}
	for _, wb := range result.Waybills {
		resp.Waybills = append(resp.Waybills, waybillJSON{
			TrackingNumber: wb.TrackingNumber,
			ContentType:    wb.ContentType,
			Data:           wb.Data,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use POST")
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	start := time.Now()
	outcome, err := s.orchestrator.CancelOrders(r.Context(), req.TrackingNumbers, nil)
	s.metrics.RecordRequest("cancel_orders", s.carrier.Name(), statusLabel(err), time.Since(start).Seconds())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cancelOutcomeResponse(outcome))
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use GET")
		return
	}

	tns := r.URL.Query()["tracking_number"]
	if len(tns) == 0 {
		writeError(w, http.StatusBadRequest, "tracking_number query parameter is required")
		return
	}

	start := time.Now()
	infos, err := s.carrier.TrackOrders(r.Context(), tns)
	s.metrics.RecordRequest("tracking", s.carrier.Name(), statusLabel(err), time.Since(start).Seconds())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trackingResponse(infos))
}

// handleWebhook feeds the delivery to the receiver and always responds
// 200 so the carrier does not retry. Verdicts surface through the
// receiver's callbacks and metrics.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use POST")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Ctx(r.Context()).Warn("failed to read webhook body", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}

	s.receiver.Receive(r.Context(), body, r.Header.Get(ninjavan.SignatureHeader))
	w.WriteHeader(http.StatusOK)
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
