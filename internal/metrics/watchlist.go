package metrics

import (
	"sort"
	"sync"
	"time"

	"watchlist/logger"
)

// Metric names emitted for every source run.
const (
	MetricTickers   = "watchlist_tickers"
	MetricRecords   = "watchlist_records"
	MetricRejected  = "watchlist_rejected"
	MetricMalformed = "watchlist_malformed"
	MetricFailures  = "watchlist_source_failures"
	MetricDuration  = "watchlist_source_duration"
)

const component = "aggregator"

// SourceRun describes the outcome of one source pipeline.
type SourceRun struct {
	Label     string
	Records   int
	Tickers   int
	Malformed int
	Rejected  map[string]int
	Duration  time.Duration
	Failure   string
}

// RecordSourceRun emits the metrics of one source pipeline run.
func RecordSourceRun(log *logger.Log, run SourceRun) {
	source := logger.Fields{"source": run.Label, "unit": "count"}

	if run.Failure != "" {
		EmitMetric(log, component, MetricFailures, 1, "counter", logger.Fields{
			"source": run.Label,
			"kind":   run.Failure,
			"unit":   "count",
		})
	}
	EmitMetric(log, component, MetricRecords, run.Records, "gauge", source)
	EmitMetric(log, component, MetricTickers, run.Tickers, "gauge", source)
	if run.Malformed > 0 {
		EmitMetric(log, component, MetricMalformed, run.Malformed, "counter", source)
	}
	for rule, n := range run.Rejected {
		EmitMetric(log, component, MetricRejected, n, "counter", logger.Fields{
			"source": run.Label,
			"rule":   rule,
			"unit":   "count",
		})
	}
	EmitMetric(log, component, MetricDuration, run.Duration.Milliseconds(), "gauge", logger.Fields{
		"source": run.Label,
		"unit":   "milliseconds",
	})
}

// SourceTotals is what one label produced during a run.
type SourceTotals struct {
	Label    string
	Tickers  int
	Rejected int
	Failures []string
}

// Summary collects the source metrics of one invocation.
type Summary struct {
	mu      sync.Mutex
	sources map[string]*SourceTotals
	stop    func()
}

// NewSummary subscribes a collector to emitted source metrics. Call Close
// once the run is over.
func NewSummary() *Summary {
	s := &Summary{sources: map[string]*SourceTotals{}}
	s.stop = Subscribe(s.handle)
	return s
}

func (s *Summary) handle(m Metric) {
	if m.Component != component {
		return
	}
	label, _ := m.Fields["source"].(string)
	if label == "" {
		return
	}
	n, _ := toFloat64(m.Value)

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.sources[label]
	if !ok {
		t = &SourceTotals{Label: label}
		s.sources[label] = t
	}
	switch m.Name {
	case MetricTickers:
		t.Tickers = int(n)
	case MetricRejected:
		t.Rejected += int(n)
	case MetricFailures:
		kind, _ := m.Fields["kind"].(string)
		t.Failures = append(t.Failures, kind)
	}
}

// Sources returns the collected totals ordered by label.
func (s *Summary) Sources() []SourceTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SourceTotals, 0, len(s.sources))
	for _, t := range s.sources {
		c := *t
		c.Failures = append([]string(nil), t.Failures...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Close stops collecting.
func (s *Summary) Close() {
	s.stop()
}
