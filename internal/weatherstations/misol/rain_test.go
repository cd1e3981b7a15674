package misol

import (
	"math"
	"testing"
	"time"
)

func TestRainEstimator(t *testing.T) {
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e := rainEstimator{interval: time.Minute}

	// First sample only establishes the baseline.
	if rate, ok := e.update(100, true, t0); ok {
		t.Fatalf("first sample produced rate %v", rate)
	}

	// 10 ticks over 61 s: 10 * 0.3 mm over 61/3600 h.
	rate, ok := e.update(110, true, t0.Add(61*time.Second))
	if !ok {
		t.Fatal("full window elapsed but no rate produced")
	}
	want := 10 * rainUnitMM / (61.0 / 3600)
	if math.Abs(rate-want) > 0.01 {
		t.Errorf("rate = %v, want %v", rate, want)
	}

	// The baseline advanced to (110, t0+61s); the next rate is computed
	// against it, not against the original sample.
	rate, ok = e.update(115, true, t0.Add(122*time.Second))
	if !ok {
		t.Fatal("second window elapsed but no rate produced")
	}
	want = 5 * rainUnitMM / (61.0 / 3600)
	if math.Abs(rate-want) > 0.01 {
		t.Errorf("rate = %v, want %v", rate, want)
	}
}

func TestRainEstimatorWindowNotElapsed(t *testing.T) {
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e := rainEstimator{interval: time.Minute}

	e.update(100, true, t0)

	// Exactly at the interval boundary: window not yet complete.
	if rate, ok := e.update(110, true, t0.Add(time.Minute)); ok {
		t.Fatalf("rate %v produced at window boundary", rate)
	}

	// The baseline must survive the short sample: one second later the
	// full 61 s window pays out.
	rate, ok := e.update(110, true, t0.Add(61*time.Second))
	if !ok {
		t.Fatal("no rate after window elapsed")
	}
	want := 10 * rainUnitMM / (61.0 / 3600)
	if math.Abs(rate-want) > 0.01 {
		t.Errorf("rate = %v, want %v", rate, want)
	}
}

func TestRainEstimatorSentinelDropsBaseline(t *testing.T) {
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e := rainEstimator{interval: time.Minute}

	e.update(100, true, t0)
	e.update(0, false, t0.Add(30*time.Second))

	// The next valid sample re-establishes the baseline, so even a long
	// elapsed time yields no rate.
	if rate, ok := e.update(200, true, t0.Add(10*time.Minute)); ok {
		t.Fatalf("rate %v produced from a sample after a sentinel", rate)
	}
}

func TestRainEstimatorCounterRegression(t *testing.T) {
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e := rainEstimator{interval: time.Minute}

	e.update(60000, true, t0)

	// Counter rolled over (or the station reset).  No rate, fresh baseline
	// at the regressed value.
	if rate, ok := e.update(5, true, t0.Add(2*time.Minute)); ok {
		t.Fatalf("rate %v produced from a regressed counter", rate)
	}

	rate, ok := e.update(15, true, t0.Add(2*time.Minute+61*time.Second))
	if !ok {
		t.Fatal("no rate from the post-rollover baseline")
	}
	want := 10 * rainUnitMM / (61.0 / 3600)
	if math.Abs(rate-want) > 0.01 {
		t.Errorf("rate = %v, want %v", rate, want)
	}
}

func TestRainEstimatorNoRainfall(t *testing.T) {
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e := rainEstimator{interval: time.Minute}

	e.update(100, true, t0)
	rate, ok := e.update(100, true, t0.Add(2*time.Minute))
	if !ok {
		t.Fatal("unchanged counter over a full window should produce a zero rate")
	}
	if rate != 0 {
		t.Errorf("rate = %v, want 0", rate)
	}
}

func TestRainEstimatorReset(t *testing.T) {
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e := rainEstimator{interval: time.Minute}

	e.update(100, true, t0)
	e.reset()

	if rate, ok := e.update(150, true, t0.Add(5*time.Minute)); ok {
		t.Fatalf("rate %v produced across a reset", rate)
	}
}
