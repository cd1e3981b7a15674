package misol

import "testing"

func TestNightDetector(t *testing.T) {
	d := nightDetector{lower: 4.5, upper: 5.5}

	steps := []struct {
		uv   float64
		want bool
	}{
		{6.0, false}, // first sample, above midpoint
		{5.0, false}, // inside band, day holds
		{4.6, false},
		{4.0, true}, // crossed lower, night
		{5.0, true}, // inside band, night holds
		{5.4, true},
		{5.6, false}, // crossed upper, day again
		{4.4, true},
	}

	for i, s := range steps {
		if got := d.update(s.uv); got != s.want {
			t.Errorf("step %d: update(%v) = %v, want %v", i, s.uv, got, s.want)
		}
	}
}

func TestNightDetectorFirstSampleMidpoint(t *testing.T) {
	tests := []struct {
		uv   float64
		want bool
	}{
		{4.9, true},  // below midpoint of 4.5/5.5
		{5.0, false}, // at midpoint counts as day
		{5.1, false},
	}

	for _, tt := range tests {
		d := nightDetector{lower: 4.5, upper: 5.5}
		if got := d.update(tt.uv); got != tt.want {
			t.Errorf("first update(%v) = %v, want %v", tt.uv, got, tt.want)
		}
	}
}

func TestNightDetectorNoOscillationInsideBand(t *testing.T) {
	d := nightDetector{lower: 4.5, upper: 5.5}
	d.update(10) // day

	for i := 0; i < 20; i++ {
		uv := 4.6
		if i%2 == 1 {
			uv = 5.4
		}
		if d.update(uv) {
			t.Fatalf("iteration %d: flipped to night inside the hysteresis band", i)
		}
	}

	d.update(0) // night
	for i := 0; i < 20; i++ {
		uv := 4.6
		if i%2 == 1 {
			uv = 5.4
		}
		if !d.update(uv) {
			t.Fatalf("iteration %d: flipped to day inside the hysteresis band", i)
		}
	}
}

func TestNightDetectorReset(t *testing.T) {
	d := nightDetector{lower: 4.5, upper: 5.5}
	d.update(0) // night

	d.reset()

	// After reset the next sample compares against the midpoint again, not
	// the night-exit threshold.
	if got := d.update(5.2); got != false {
		t.Errorf("update(5.2) after reset = %v, want false", got)
	}
}
