package naming

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedFinder records lookup counts and latency for a wrapped NameFinder.
type InstrumentedFinder struct {
	next     NameFinder
	lookups  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewInstrumentedFinder wraps next and registers its collectors with reg.
// A nil reg leaves the collectors unregistered.
func NewInstrumentedFinder(next NameFinder, reg prometheus.Registerer) (*InstrumentedFinder, error) {
	f := &InstrumentedFinder{
		next: next,
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metadactyl",
			Name:      "name_lookups_total",
			Help:      "Existing-name lookups issued while allocating unique names, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metadactyl",
			Name:      "name_lookup_duration_seconds",
			Help:      "Latency of existing-name lookups.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		return f, nil
	}
	for _, c := range []prometheus.Collector{f.lookups, f.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register name lookup metrics: %w", err)
		}
	}
	return f, nil
}

func (f *InstrumentedFinder) FindNamesByOwnerAndPrefix(ctx context.Context, owner, prefix string) ([]string, error) {
	start := time.Now()
	names, err := f.next.FindNamesByOwnerAndPrefix(ctx, owner, prefix)
	f.duration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		f.lookups.WithLabelValues("error").Inc()
	case len(names) == 0:
		f.lookups.WithLabelValues("empty").Inc()
	default:
		f.lookups.WithLabelValues("matched").Inc()
	}
	return names, err
}
