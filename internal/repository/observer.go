package repository

import "time"

// QueryObserver receives query timings. *service.MetricsService satisfies it.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveDBQuery(string, time.Duration) {}

func observerOrNoop(o QueryObserver) QueryObserver {
	if o == nil {
		return noopObserver{}
	}
	return o
}

func timed(o QueryObserver, label string) func() {
	start := time.Now()
	return func() { o.ObserveDBQuery(label, time.Since(start)) }
}
