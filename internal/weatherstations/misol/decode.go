package misol

import (
	"github.com/chrissnell/misolweather/internal/types"
)

// Sentinel bit patterns the sensor head transmits when a channel has no
// valid reading.  A sentinel always decodes to "no reading", never to the
// sentinel's numeric value.
const (
	sentinelNineBit = 0x1FF    // wind direction, wind speed
	sentinelTemp    = 0x7FF    // temperature
	sentinelByte    = 0xFF     // humidity, wind gust
	sentinelWord    = 0xFFFF   // rain counter, UV intensity
	sentinelLux     = 0xFFFFFF // illuminance
)

// rainUnitMM is the amount of precipitation, in mm, represented by one tick
// of the station's rain-bucket counter.
const rainUnitMM = 0.3

// Observation is the decode of one validated packet.  Multi-byte fields are
// bit-packed combinations of a low byte and high bits borrowed from the
// flags byte (data[3]), per the station's proprietary layout.
type Observation struct {
	WindDir     types.Value // degrees
	Temperature types.Value // °C
	Humidity    types.Value // %
	WindSpeed   types.Value // km/h
	WindGust    types.Value // km/h
	RainTotal   types.Value // mm, running counter
	UVIntensity types.Value // mW/m²
	UVIndex     types.Value
	Illuminance types.Value // lux
	Pressure    types.Value // hPa
	BatteryLow  bool

	// RainCounter is the raw 16-bit bucket counter, needed by the rate
	// estimator.  Invalid when the counter read as its sentinel.
	RainCounter      uint16
	RainCounterValid bool
}

// DecodeObservation extracts physical values from a validated buffer.  It is
// a total, pure function: it never fails on any buffer of at least 17 (or,
// with hasPressure, 21) bytes.
func DecodeObservation(data []byte, hasPressure bool) Observation {
	var o Observation

	windDir := uint16(data[2]) + uint16(data[3]&0x80)<<1
	if windDir != sentinelNineBit {
		o.WindDir = types.NewValue(float64(windDir))
	}

	o.BatteryLow = data[3]&0x08 != 0

	tempRaw := uint16(data[4]) + uint16(data[3]&0x07)<<8
	if tempRaw != sentinelTemp {
		o.Temperature = types.NewValue((float64(tempRaw) - 400) / 10)
	}

	if data[5] != sentinelByte {
		o.Humidity = types.NewValue(float64(data[5]))
	}

	windRaw := uint16(data[6]) + uint16(data[3]&0x10)<<4
	if windRaw != sentinelNineBit {
		o.WindSpeed = types.NewValue(float64(windRaw) / 8 * 1.12)
	}

	if data[7] != sentinelByte {
		o.WindGust = types.NewValue(float64(data[7]) * 1.12)
	}

	rain := uint16(data[9]) + uint16(data[8])<<8
	if rain != sentinelWord {
		o.RainCounter = rain
		o.RainCounterValid = true
		o.RainTotal = types.NewValue(float64(rain) * rainUnitMM)
	}

	uvRaw := uint16(data[11]) + uint16(data[10])<<8
	if uvRaw != sentinelWord {
		o.UVIntensity = types.NewValue(float64(uvRaw) / 10)
		o.UVIndex = types.NewValue(float64(uvRaw / 400))
	}

	lux := uint32(data[14]) + uint32(data[13])<<8 + uint32(data[12])<<16
	if lux != sentinelLux {
		o.Illuminance = types.NewValue(float64(lux) / 10)
	}

	if hasPressure {
		p := uint32(data[17])<<16 + uint32(data[18])<<8 + uint32(data[19])
		o.Pressure = types.NewValue(float64(p) / 100)
	}

	return o
}
