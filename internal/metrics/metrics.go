package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "router"

var (
	// Requests counts processed swap requests by outcome.
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Swap requests handled, by outcome.",
	}, []string{"outcome"})

	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Transactions handed to a sender, by sender and result.",
	}, []string{"sender", "result"})

	SubmitLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "submit_seconds",
		Help:      "Time to build, sign and submit a swap transaction.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode"})

	Observed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observed_total",
		Help:      "Router instructions seen by the tracker, by status.",
	}, []string{"status"})
)

const (
	OutcomeOK              = "ok"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeSwapError       = "swap_error"
)

// Register adds the collectors to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{Requests, Submissions, SubmitLatency, Observed} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
