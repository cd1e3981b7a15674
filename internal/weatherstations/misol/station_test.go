package misol

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/chrissnell/misolweather/internal/log"
	"github.com/chrissnell/misolweather/internal/types"
	"github.com/chrissnell/misolweather/pkg/config"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	log.Init(false)
	os.Exit(m.Run())
}

func newTestStation(distributor chan types.Reading) *Station {
	return &Station{
		config:             config.DeviceData{Name: "backyard"},
		ReadingDistributor: distributor,
		logger:             zap.NewNop().Sugar(),
		rx:                 make(chan []byte, 16),
		session:            session{timeout: 2 * time.Minute},
		night:              nightDetector{lower: 4.5, upper: 5.5},
		rain:               rainEstimator{interval: time.Minute},
	}
}

// receiveReading takes one reading off the distributor without blocking the
// test forever on a bug.
func receiveReading(t *testing.T, distributor chan types.Reading) types.Reading {
	t.Helper()
	select {
	case r := <-distributor:
		return r
	default:
		t.Fatal("no reading published")
		return types.Reading{}
	}
}

func assertNoReading(t *testing.T, distributor chan types.Reading) {
	t.Helper()
	select {
	case r := <-distributor:
		t.Fatalf("unexpected reading published: %+v", r)
	default:
	}
}

func TestStationTickPublishesReading(t *testing.T) {
	distributor := make(chan types.Reading, 4)
	s := newTestStation(distributor)
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	// The reader delivers frames in arbitrary chunks; the tick must
	// reassemble them.
	frame := sampleFrame()
	s.rx <- frame[:10]
	s.rx <- frame[10:]
	s.tick(t0)

	r := receiveReading(t, distributor)
	if r.StationName != "backyard" || r.StationType != "misol" {
		t.Errorf("station identity = %q/%q, want backyard/misol", r.StationName, r.StationType)
	}
	if !r.Timestamp.Equal(t0) {
		t.Errorf("Timestamp = %v, want %v", r.Timestamp, t0)
	}
	if !r.Temperature.Valid || math.Abs(r.Temperature.Float64-21.5) > 0.0001 {
		t.Errorf("Temperature = %v (valid %v), want 21.5", r.Temperature.Float64, r.Temperature.Valid)
	}
	if !r.Pressure.Valid || math.Abs(r.Pressure.Float64-1013.25) > 0.0001 {
		t.Errorf("Pressure = %v (valid %v), want 1013.25", r.Pressure.Float64, r.Pressure.Valid)
	}
	if !r.Night.Valid || r.Night.Bool {
		t.Errorf("Night = %v (valid %v), want valid day", r.Night.Bool, r.Night.Valid)
	}
	if r.RainRate.Valid {
		t.Errorf("RainRate = %v, want invalid on the first sample", r.RainRate.Float64)
	}
	if !r.BatteryLow.Valid || r.BatteryLow.Bool {
		t.Errorf("BatteryLow = %v (valid %v), want valid false", r.BatteryLow.Bool, r.BatteryLow.Valid)
	}
	if r.CompassDirection != "E" {
		t.Errorf("CompassDirection = %q, want E", r.CompassDirection)
	}
	if r.WindDescription != "Light Air" {
		t.Errorf("WindDescription = %q, want Light Air", r.WindDescription)
	}
	if r.LightDescription != "Bright" {
		t.Errorf("LightDescription = %q, want Bright", r.LightDescription)
	}
	if r.RainDescription != "" {
		t.Errorf("RainDescription = %q, want empty without a rate", r.RainDescription)
	}
}

func TestStationTickNoData(t *testing.T) {
	distributor := make(chan types.Reading, 4)
	s := newTestStation(distributor)

	s.tick(time.Now())
	assertNoReading(t, distributor)
}

func TestStationDiscardsInvalidFrame(t *testing.T) {
	distributor := make(chan types.Reading, 4)
	s := newTestStation(distributor)
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	frame := sampleFrame()
	frame[16] ^= 0x01
	s.rx <- frame
	s.tick(t0)

	assertNoReading(t, distributor)

	// Garbage still proves the link is alive, so the watchdog arms and
	// fires on a later silent tick.
	s.tick(t0.Add(121 * time.Second))
	r := receiveReading(t, distributor)
	if r.Temperature.Valid || r.Night.Valid || r.BatteryLow.Valid {
		t.Errorf("watchdog reading has valid channels: %+v", r)
	}
}

func TestStationSecondaryChecksumDowngrade(t *testing.T) {
	distributor := make(chan types.Reading, 4)
	s := newTestStation(distributor)

	frame := sampleFrame()
	frame[20] ^= 0x01
	s.rx <- frame
	s.tick(time.Now())

	r := receiveReading(t, distributor)
	if r.Pressure.Valid {
		t.Errorf("Pressure = %v, want invalid after secondary checksum failure", r.Pressure.Float64)
	}
	if !r.Temperature.Valid || math.Abs(r.Temperature.Float64-21.5) > 0.0001 {
		t.Errorf("Temperature = %v (valid %v), want 21.5", r.Temperature.Float64, r.Temperature.Valid)
	}
}

func TestStationNorthCorrection(t *testing.T) {
	distributor := make(chan types.Reading, 4)
	s := newTestStation(distributor)
	s.config.NorthCorrection = -100

	s.rx <- sampleFrame() // wind dir 90°
	s.tick(time.Now())

	r := receiveReading(t, distributor)

	// The numeric channel reports the raw degrees; only the compass label
	// is rotated (90 - 100 = -10 -> 350 -> N).
	if !r.WindDir.Valid || math.Abs(r.WindDir.Float64-90) > 0.0001 {
		t.Errorf("WindDir = %v (valid %v), want raw 90", r.WindDir.Float64, r.WindDir.Valid)
	}
	if r.CompassDirection != "N" {
		t.Errorf("CompassDirection = %q, want N", r.CompassDirection)
	}
}

func TestStationRainRateAcrossTicks(t *testing.T) {
	distributor := make(chan types.Reading, 4)
	s := newTestStation(distributor)
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	s.rx <- sampleFrame() // counter 100
	s.tick(t0)
	receiveReading(t, distributor)

	frame := sampleFrame()
	frame[9] = 110
	s.rx <- buildFrame(frame)
	s.tick(t0.Add(61 * time.Second))

	r := receiveReading(t, distributor)
	want := 10 * rainUnitMM / (61.0 / 3600)
	if !r.RainRate.Valid || math.Abs(r.RainRate.Float64-want) > 0.01 {
		t.Errorf("RainRate = %v (valid %v), want %v", r.RainRate.Float64, r.RainRate.Valid, want)
	}
	if r.RainDescription != "Violent" {
		t.Errorf("RainDescription = %q, want Violent", r.RainDescription)
	}
}

func TestStationWatchdogResetsDetectors(t *testing.T) {
	distributor := make(chan types.Reading, 4)
	s := newTestStation(distributor)
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	s.rx <- sampleFrame()
	s.tick(t0)
	receiveReading(t, distributor)

	// Silence past the timeout: watchdog fires, all channels invalid.
	s.tick(t0.Add(121 * time.Second))
	r := receiveReading(t, distributor)
	if r.Temperature.Valid || r.RainRate.Valid || r.Night.Valid {
		t.Errorf("watchdog reading has valid channels: %+v", r)
	}

	// The rain baseline was dropped with the session, so a counter jump
	// after recovery starts a fresh window instead of producing a rate.
	frame := sampleFrame()
	frame[9] = 200
	s.rx <- buildFrame(frame)
	s.tick(t0.Add(10 * time.Minute))

	r = receiveReading(t, distributor)
	if r.RainRate.Valid {
		t.Errorf("RainRate = %v, want invalid right after session reset", r.RainRate.Float64)
	}
	if !r.Temperature.Valid {
		t.Error("Temperature invalid after recovery")
	}
}
