package aggregator

import (
	"context"
	"errors"
	"sync"
	"time"

	"watchlist/internal/metrics"
	"watchlist/logger"
	"watchlist/models"
	"watchlist/processor"
)

// Source produces the raw records of one provider.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc struct {
	ID string
	Fn func(ctx context.Context) ([]models.Record, error)
}

func (s SourceFunc) Name() string { return s.ID }

func (s SourceFunc) Fetch(ctx context.Context) ([]models.Record, error) { return s.Fn(ctx) }

// Policy decides what a failed fetch turns into.
type Policy int

const (
	// FailEmpty degrades a failed source to an empty watchlist.
	FailEmpty Policy = iota
	// FailLoud surfaces the failure to the caller.
	FailLoud
)

func (p Policy) String() string {
	if p == FailLoud {
		return "fail_loud"
	}
	return "fail_empty"
}

// Job is one source pipeline.
type Job struct {
	Label   string
	Source  Source
	Profile processor.Profile
	Policy  Policy
}

// Result is the outcome of one Job. Err is only set under FailLoud. Degraded
// keeps the swallowed failure of a FailEmpty source for diagnostics.
type Result struct {
	Label     string
	Watchlist models.Watchlist
	Report    processor.Report
	Err       error
	Degraded  error
	Duration  time.Duration
}

// Failed reports whether the source did not produce a definitive watchlist.
func (r Result) Failed() bool {
	return r.Err != nil || r.Degraded != nil
}

// Run fetches one source and drives its records through the profile pipeline.
func Run(ctx context.Context, job Job) Result {
	log := logger.GetLogger()
	entry := log.WithComponent("aggregator").WithFields(logger.Fields{
		"source": job.Source.Name(),
		"label":  job.Label,
		"policy": job.Policy.String(),
	})

	start := time.Now()
	res := Result{Label: job.Label, Watchlist: models.Watchlist{}}

	records, err := job.Source.Fetch(ctx)
	if err != nil {
		res.Duration = time.Since(start)
		kind := failureKind(err)
		if job.Policy == FailLoud {
			res.Err = err
			entry.WithError(err).WithFields(logger.Fields{"kind": kind}).Error("source failed")
		} else {
			res.Degraded = err
			entry.WithError(err).WithFields(logger.Fields{"kind": kind}).Warn("source unavailable, emitting empty watchlist")
		}
		metrics.RecordSourceRun(log, metrics.SourceRun{
			Label:    job.Label,
			Duration: res.Duration,
			Failure:  kind,
		})
		return res
	}

	res.Watchlist, res.Report = processor.NewPipeline(job.Profile).Run(records)
	res.Duration = time.Since(start)

	if res.Report.Malformed > 0 {
		entry.WithFields(logger.Fields{"malformed": res.Report.Malformed}).Debug("dropped malformed symbols")
	}
	logger.LogPerformanceEntry(entry, "aggregator", "source_pipeline", res.Duration, logger.Fields{
		"records":   res.Report.Input,
		"tickers":   res.Report.Emitted,
		"duplicate": res.Report.Duplicate,
	})
	metrics.RecordSourceRun(log, metrics.SourceRun{
		Label:     job.Label,
		Records:   res.Report.Input,
		Tickers:   res.Report.Emitted,
		Malformed: res.Report.Malformed,
		Rejected:  res.Report.Rejected,
		Duration:  res.Duration,
	})
	return res
}

// RunAll runs every job on its own goroutine and returns the results in job order.
func RunAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			results[i] = Run(ctx, job)
		}(i, job)
	}
	wg.Wait()
	return results
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, models.ErrStructuralAbsence):
		return "structural_absence"
	case errors.Is(err, models.ErrDecode):
		return "decode"
	case errors.Is(err, models.ErrFetch):
		return "fetch"
	default:
		return "unknown"
	}
}

type sharedSource struct {
	Source
	once    sync.Once
	records []models.Record
	err     error
}

// Shared wraps src so that jobs reading the same provider fetch it once.
// Every caller sees the same records and error.
func Shared(src Source) Source {
	return &sharedSource{Source: src}
}

func (s *sharedSource) Fetch(ctx context.Context) ([]models.Record, error) {
	s.once.Do(func() {
		s.records, s.err = s.Source.Fetch(ctx)
	})
	return s.records, s.err
}
