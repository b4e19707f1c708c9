package metrics

import (
	"net/http"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Recorder turns committed engine events into Prometheus metrics. It is registered with the
// engine as a notifier.
type Recorder struct {
	registry *prometheus.Registry

	events    *prometheus.CounterVec
	finalized *prometheus.CounterVec
	credited  prometheus.Counter
	paid      prometheus.Counter
	escrow    prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surety",
			Name:      "events_total",
			Help:      "Committed state transitions by event type.",
		}, []string{"type"}),
		finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surety",
			Name:      "flights_finalized_total",
			Help:      "Flights finalized by oracle quorum, by status.",
		}, []string{"status"}),
		credited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surety",
			Name:      "credited_value_total",
			Help:      "Value credited to insured passengers.",
		}),
		paid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surety",
			Name:      "paid_value_total",
			Help:      "Value paid out by withdrawals.",
		}),
		escrow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "surety",
			Name:      "escrow_value",
			Help:      "Value currently held in escrow.",
		}),
	}
	r.registry.MustRegister(
		r.events, r.finalized, r.credited, r.paid, r.escrow,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Notify(events []domain.Event) {
	for _, ev := range events {
		r.events.WithLabelValues(string(ev.Type)).Inc()
		switch ev.Type {
		case domain.EventFunded, domain.EventOracleRegistered:
			r.escrow.Add(ev.Amount.InexactFloat64())
		case domain.EventInsurancePurchased:
			r.escrow.Add(ev.Value.InexactFloat64())
		case domain.EventFlightStatusUpdated:
			r.finalized.WithLabelValues(ev.Status.String()).Inc()
		case domain.EventCredited:
			r.credited.Add(ev.Amount.InexactFloat64())
		case domain.EventPaid:
			r.paid.Add(ev.Amount.InexactFloat64())
			r.escrow.Sub(ev.Amount.InexactFloat64())
		}
	}
}

// SetEscrow resets the escrow gauge, e.g. after the engine was restored from its journal.
func (r *Recorder) SetEscrow(v decimal.Decimal) {
	r.escrow.Set(v.InexactFloat64())
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
