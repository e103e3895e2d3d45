package metrics

import "github.com/prometheus/client_golang/prometheus"

// RenewalMetrics counts the work of the subscription renewal engine.
type RenewalMetrics struct {
	Cycles            prometheus.Counter
	CyclesSkipped     prometheus.Counter
	TokenRefreshes    prometheus.Counter
	DomainsRenewed    prometheus.Counter
	DomainsFailed     prometheus.Counter
	SubsRenewed       prometheus.Counter
	SubsFailed        prometheus.Counter
	CandidatesScanned prometheus.Counter
}

func NewRenewalMetrics(logger Logger) *RenewalMetrics {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: "renewal",
			Name:      name,
			Help:      help,
		})
		if err := prometheus.Register(c); err != nil && logger != nil {
			logger.Errorf("renewal metric %s could not be registered, err=%v", name, err)
		}
		return c
	}

	return &RenewalMetrics{
		Cycles:            counter("cycles_total", "Renewal cycles executed."),
		CyclesSkipped:     counter("cycles_skipped_total", "Cycle triggers skipped because the previous cycle was still running."),
		TokenRefreshes:    counter("token_refreshes_total", "OAuth refresh-token exchanges performed."),
		DomainsRenewed:    counter("domains_renewed_total", "Domains whose renewal sequence completed."),
		DomainsFailed:     counter("domains_failed_total", "Domains whose renewal sequence failed and was deferred to the next cycle."),
		SubsRenewed:       counter("subscriptions_renewed_total", "Subscriptions renewed remotely and persisted locally."),
		SubsFailed:        counter("subscriptions_failed_total", "Subscriptions skipped within an otherwise healthy domain."),
		CandidatesScanned: counter("candidates_scanned_total", "Expiring subscriptions returned by scans."),
	}
}
