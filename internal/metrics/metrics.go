// Package metrics exposes K9's Prometheus collectors. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hunterjsb/k9/internal/logger"
)

const namespace = "k9"

// Metrics holds the bot's collectors.
type Metrics struct {
	questionsPublished prometheus.Counter
	answers            *prometheus.CounterVec
	ledgerErrors       prometheus.Counter
	commands           *prometheus.CounterVec
	apiDuration        *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		questionsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trivia",
			Name:      "questions_published_total",
			Help:      "Trivia questions posted to channels.",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trivia",
			Name:      "answers_total",
			Help:      "Replies checked against a live trivia question.",
		}, []string{"result"}),
		ledgerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "errors_total",
			Help:      "Point ledger operations that failed.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Slash commands received.",
		}, []string{"command"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rapidapi",
			Name:      "request_duration_seconds",
			Help:      "Latency of RapidAPI requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	collectors := []prometheus.Collector{
		m.questionsPublished, m.answers, m.ledgerErrors, m.commands, m.apiDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) QuestionPublished() {
	if m == nil {
		return
	}
	m.questionsPublished.Inc()
}

func (m *Metrics) AnswerChecked(correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.answers.WithLabelValues(result).Inc()
}

func (m *Metrics) LedgerError() {
	if m == nil {
		return
	}
	m.ledgerErrors.Inc()
}

func (m *Metrics) CommandReceived(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

// ObserveAPI records how long a request to endpoint took.
func (m *Metrics) ObserveAPI(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Routes returns the metrics and health routes.
func Routes(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Serve runs the metrics listener on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Routes(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", "error", err)
		}
	}()

	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
