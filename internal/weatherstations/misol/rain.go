package misol

import "time"

// rainEstimator converts the station's monotonically increasing rain-bucket
// counter into a precipitation rate (mm/h) over a sliding time window.  It
// holds a baseline (counter, time) pair and emits a rate only once the
// configured minimum interval has fully elapsed since the baseline.
type rainEstimator struct {
	interval time.Duration

	baseline     uint16
	baselineTime time.Time
	baselineSet  bool
}

// update ingests one counter sample.  It returns (rate, true) when a full
// window has elapsed, otherwise (0, false).
//
// counterValid is false when the station reported the 0xFFFF sentinel; that
// drops the baseline so a rate is never computed from a sentinel.  A counter
// that regressed below the baseline (rollover, or the station itself was
// reset) likewise starts a fresh window instead of producing a bogus rate
// from the raw 16-bit subtraction.
func (e *rainEstimator) update(counter uint16, counterValid bool, now time.Time) (float64, bool) {
	if !counterValid {
		e.reset()
		return 0, false
	}

	if !e.baselineSet || counter < e.baseline {
		e.baseline = counter
		e.baselineTime = now
		e.baselineSet = true
		return 0, false
	}

	elapsed := now.Sub(e.baselineTime)
	if elapsed <= e.interval {
		// Window not yet complete; keep the baseline so wall-clock time
		// accumulates toward it.
		return 0, false
	}

	rate := float64(counter-e.baseline) * rainUnitMM / elapsed.Hours()
	e.baseline = counter
	e.baselineTime = now
	return rate, true
}

// reset drops the baseline.  The next valid sample establishes a new one
// without producing a rate.
func (e *rainEstimator) reset() {
	e.baselineSet = false
}
