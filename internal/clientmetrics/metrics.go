// Package clientmetrics aggregates per-call latency and outcome
// statistics for watch mode.
package clientmetrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Recorder records call outcomes in a thread-safe manner.
type Recorder struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	successes  int64
	failures   int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
	start      time.Time
}

// Stats represents aggregated call statistics.
type Stats struct {
	Total       int64
	Successes   int64
	Failures    int64
	MinLatency  time.Duration
	MaxLatency  time.Duration
	MeanLatency time.Duration
	P50Latency  time.Duration
	P95Latency  time.Duration
	P99Latency  time.Duration
	Elapsed     time.Duration
}

func New() *Recorder {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Recorder{
		hist:  h,
		start: time.Now(),
	}
}

// Record records a single call's latency and error state.
func (r *Recorder) Record(latency time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if latency > 0 {
		us := latency.Microseconds()
		if us < r.hist.LowestTrackableValue() {
			us = r.hist.LowestTrackableValue()
		}
		if us > r.hist.HighestTrackableValue() {
			us = r.hist.HighestTrackableValue()
		}
		_ = r.hist.RecordValue(us)
	}
	r.sumLatency += latency

	if r.minLatency == 0 || latency < r.minLatency {
		r.minLatency = latency
	}
	if latency > r.maxLatency {
		r.maxLatency = latency
	}

	if err == nil {
		r.successes++
	} else {
		r.failures++
	}
}

// Stats computes and returns current aggregated statistics.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := r.successes + r.failures
	stats := Stats{
		Total:      total,
		Successes:  r.successes,
		Failures:   r.failures,
		MinLatency: r.minLatency,
		MaxLatency: r.maxLatency,
		Elapsed:    time.Since(r.start),
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(r.sumLatency) / total)
	}

	if r.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P95Latency = time.Duration(r.hist.ValueAtQuantile(95)) * time.Microsecond
		stats.P99Latency = time.Duration(r.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	return stats
}
