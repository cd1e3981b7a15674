package misol

// Descriptive-label lookups for the text channels.  These are pure, stateless
// mappings from a numeric reading to a human-readable category.

var compassPoints16 = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

var compassPoints8 = []string{
	"N", "NE", "E", "SE", "S", "SW", "W", "NW",
}

// CompassDirection maps wind-direction degrees to a compass point name.
// northCorrection (−180..180) compensates for a sensor head that was not
// mounted pointing true north.  With secondary=true the 16-point rose
// (secondary intercardinals like NNE) is used instead of the 8-point one.
func CompassDirection(degrees float64, northCorrection int, secondary bool) string {
	corrected := normalizeDegrees(degrees + float64(northCorrection))

	if secondary {
		sector := int((corrected+11.25)/22.5) % 16
		return compassPoints16[sector]
	}
	sector := int((corrected+22.5)/45) % 8
	return compassPoints8[sector]
}

// WindDescription maps a wind speed in km/h to a Beaufort-scale category.
func WindDescription(kmh float64) string {
	switch {
	case kmh < 1:
		return "Calm"
	case kmh < 6:
		return "Light Air"
	case kmh < 12:
		return "Light Breeze"
	case kmh < 20:
		return "Gentle Breeze"
	case kmh < 29:
		return "Moderate Breeze"
	case kmh < 39:
		return "Fresh Breeze"
	case kmh < 50:
		return "Strong Breeze"
	case kmh < 62:
		return "Near Gale"
	case kmh < 75:
		return "Gale"
	case kmh < 89:
		return "Strong Gale"
	case kmh < 103:
		return "Storm"
	case kmh < 118:
		return "Violent Storm"
	default:
		return "Hurricane"
	}
}

// LightDescription maps illuminance in lux to a qualitative category.
func LightDescription(lux float64) string {
	switch {
	case lux < 10:
		return "Dark"
	case lux < 400:
		return "Twilight"
	case lux < 1000:
		return "Overcast"
	case lux < 10000:
		return "Daylight"
	case lux < 50000:
		return "Bright"
	default:
		return "Direct Sunlight"
	}
}

// PrecipitationDescription maps a rain rate in mm/h to the standard
// meteorological intensity category.
func PrecipitationDescription(mmPerHour float64) string {
	switch {
	case mmPerHour < 0.1:
		return "None"
	case mmPerHour < 2.5:
		return "Light"
	case mmPerHour < 7.6:
		return "Moderate"
	case mmPerHour < 50:
		return "Heavy"
	default:
		return "Violent"
	}
}
