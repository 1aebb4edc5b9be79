package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the recipient directory.
type Metrics struct {
	RecipientsCreated prometheus.Counter
	RecipientsUpdated prometheus.Counter
	UpsertDuration    prometheus.Histogram
}

// New creates a new Metrics instance with all directory metrics registered.
func New() *Metrics {
	return &Metrics{
		RecipientsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "organmatch_recipients_created_total",
			Help: "Total number of recipient records created",
		}),
		RecipientsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "organmatch_recipients_updated_total",
			Help: "Total number of recipient record updates",
		}),
		UpsertDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "organmatch_recipient_upsert_duration_seconds",
			Help:    "Duration of recipient upsert operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveUpsert records one upsert outcome and its duration.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveUpsert(start time.Time, created bool) {
	if created {
		m.RecipientsCreated.Inc()
	} else {
		m.RecipientsUpdated.Inc()
	}
	m.UpsertDuration.Observe(time.Since(start).Seconds())
}
