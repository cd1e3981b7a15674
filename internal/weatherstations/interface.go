// Package weatherstations defines the interface implemented by all weather
// station backends.
package weatherstations

// WeatherStation is an interface that provides standard methods for various
// weather station backends
type WeatherStation interface {
	StartWeatherStation() error
	StationName() string
}
