package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the bot collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal       *prometheus.CounterVec
	RoleMutationsTotal  *prometheus.CounterVec
	LookupsTotal        *prometheus.CounterVec
	SubscriptionIndexSz prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roycemorebot_commands_total",
				Help: "Commands handled by name and outcome",
			},
			[]string{"command", "outcome"},
		),
		RoleMutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roycemorebot_role_mutations_total",
				Help: "Role additions and removals requested from Discord",
			},
			[]string{"operation", "outcome"},
		),
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roycemorebot_subscription_lookups_total",
				Help: "Subscription name lookups by result",
			},
			[]string{"result"},
		),
		SubscriptionIndexSz: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "roycemorebot_subscription_index_size",
				Help: "Entries in the announcement subscription index",
			},
		),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) Command(name string, err error) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(name, outcome(err)).Inc()
}

func (m *Metrics) RoleMutation(op string, err error) {
	if m == nil {
		return
	}
	m.RoleMutationsTotal.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) Lookup(matched bool) {
	if m == nil {
		return
	}
	result := "miss"
	if matched {
		result = "match"
	}
	m.LookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IndexSize(n int) {
	if m == nil {
		return
	}
	m.SubscriptionIndexSz.Set(float64(n))
}

func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Serve exposes the metrics endpoint until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.SugaredLogger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infow("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorw("Metrics server stopped", "error", err)
	}
}
