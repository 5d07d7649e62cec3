package clientmetrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	r.Record(10*time.Millisecond, nil)
	r.Record(20*time.Millisecond, nil)
	r.Record(30*time.Millisecond, errors.New("boom"))

	stats := r.Stats()
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Successes != 2 || stats.Failures != 1 {
		t.Errorf("Successes/Failures = %d/%d, want 2/1", stats.Successes, stats.Failures)
	}
}

func TestRecorderLatencies(t *testing.T) {
	r := New()

	r.Record(10*time.Millisecond, nil)
	r.Record(20*time.Millisecond, nil)
	r.Record(60*time.Millisecond, nil)

	stats := r.Stats()
	if stats.MinLatency != 10*time.Millisecond {
		t.Errorf("MinLatency = %v, want 10ms", stats.MinLatency)
	}
	if stats.MaxLatency != 60*time.Millisecond {
		t.Errorf("MaxLatency = %v, want 60ms", stats.MaxLatency)
	}
	if stats.MeanLatency != 30*time.Millisecond {
		t.Errorf("MeanLatency = %v, want 30ms", stats.MeanLatency)
	}
	// Histogram keeps 3 significant figures, so allow small rounding.
	if stats.P50Latency < 19*time.Millisecond || stats.P50Latency > 21*time.Millisecond {
		t.Errorf("P50Latency = %v, want ~20ms", stats.P50Latency)
	}
	if stats.P99Latency < 59*time.Millisecond || stats.P99Latency > 61*time.Millisecond {
		t.Errorf("P99Latency = %v, want ~60ms", stats.P99Latency)
	}
}

func TestRecorderEmpty(t *testing.T) {
	stats := New().Stats()
	if stats.Total != 0 || stats.MeanLatency != 0 || stats.P50Latency != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}
}

func TestRecorderClampsOutOfRange(t *testing.T) {
	r := New()
	r.Record(90*time.Second, nil)
	r.Record(time.Nanosecond, nil)

	stats := r.Stats()
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.MaxLatency != 90*time.Second {
		t.Errorf("MaxLatency = %v, want the raw 90s", stats.MaxLatency)
	}
}
