package misol

// nightDetector is a Schmitt-trigger comparator on UV intensity.  Two
// thresholds prevent the day/night output from chattering when illumination
// hovers near a single crossing point: once "night", the reading must climb
// past the upper threshold to flip back to "day", and vice versa.
//
// Each station session owns its own detector; there is no package-level
// state, so independent stations never interfere.
type nightDetector struct {
	lower float64
	upper float64

	hasRun bool
	night  bool
}

// update must only be called with a valid UV intensity reading.
func (d *nightDetector) update(uvIntensity float64) bool {
	var night bool
	if !d.hasRun {
		night = uvIntensity < (d.lower+d.upper)/2
		d.hasRun = true
	} else if d.night {
		night = uvIntensity < d.upper
	} else {
		night = uvIntensity < d.lower
	}
	d.night = night
	return night
}

// reset discards the detector's history.  The next update behaves like a
// first run, comparing against the threshold midpoint.
func (d *nightDetector) reset() {
	d.hasRun = false
	d.night = false
}
