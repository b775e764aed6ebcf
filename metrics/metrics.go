package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "jkpsol"

const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics holds the client's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Submissions    *prometheus.CounterVec
	SubmitDuration prometheus.Histogram
	RPCRequests    *prometheus.CounterVec
	Syncs          *prometheus.CounterVec
	DirectoryOps   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "submissions_total",
			Help:      "Move submissions by terminal stage.",
		}, []string{"stage"}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "submit_duration_seconds",
			Help:      "Time from build to terminal stage.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 90},
		}),
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC calls by method and result.",
		}, []string{"method", "result"}),
		Syncs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "syncs_total",
			Help:      "Player state synchronisations by result.",
		}, []string{"result"}),
		DirectoryOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "directory_ops_total",
			Help:      "Leaderboard directory operations by op and result.",
		}, []string{"op", "result"}),
	}
}

// NewNop returns collectors registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

func (m *Metrics) ObserveSubmission(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(stage).Inc()
	m.SubmitDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRPC(method string, err error) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(method, result(err)).Inc()
}

func (m *Metrics) ObserveSync(err error) {
	if m == nil {
		return
	}
	m.Syncs.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) ObserveDirectory(op string, err error) {
	if m == nil {
		return
	}
	m.DirectoryOps.WithLabelValues(op, result(err)).Inc()
}

// Serve exposes g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
