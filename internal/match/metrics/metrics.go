package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the match lifecycle.
type Metrics struct {
	MatchesFound     prometheus.Counter
	MatchesConfirmed prometheus.Counter
	SearchesNoMatch  prometheus.Counter
	SearchDuration   prometheus.Histogram
	BestScore        prometheus.Gauge
}

// New creates a new Metrics instance with all match metrics registered.
func New() *Metrics {
	return &Metrics{
		MatchesFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "organmatch_matches_found_total",
			Help: "Total number of match proposals created",
		}),
		MatchesConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "organmatch_matches_confirmed_total",
			Help: "Total number of match proposals confirmed",
		}),
		SearchesNoMatch: promauto.NewCounter(prometheus.CounterOpts{
			Name: "organmatch_searches_no_match_total",
			Help: "Total number of searches that found no compatible recipient",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "organmatch_match_search_duration_seconds",
			Help:    "Duration of match search operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BestScore: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "organmatch_last_match_score",
			Help: "Score of the most recent match proposal",
		}),
	}
}

// ObserveSearch records a completed search and its winning score.
func (m *Metrics) ObserveSearch(start time.Time, score uint64) {
	m.MatchesFound.Inc()
	m.BestScore.Set(float64(score))
	m.SearchDuration.Observe(time.Since(start).Seconds())
}

// ObserveNoMatch records a search that selected nobody.
func (m *Metrics) ObserveNoMatch(start time.Time) {
	m.SearchesNoMatch.Inc()
	m.SearchDuration.Observe(time.Since(start).Seconds())
}
