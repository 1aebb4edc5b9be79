package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the authority registry.
type Metrics struct {
	AuthoritiesActivated   prometheus.Counter
	AuthoritiesDeactivated prometheus.Counter
}

// New creates a new Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		AuthoritiesActivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "organmatch_authorities_activated_total",
			Help: "Total number of authority records created or re-activated",
		}),
		AuthoritiesDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "organmatch_authorities_deactivated_total",
			Help: "Total number of authority records deactivated",
		}),
	}
}

// IncrementAuthorityUpdated records one SetAuthority outcome.
func (m *Metrics) IncrementAuthorityUpdated(active bool) {
	if active {
		m.AuthoritiesActivated.Inc()
		return
	}
	m.AuthoritiesDeactivated.Inc()
}
