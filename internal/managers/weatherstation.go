package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/misolweather/internal/log"
	"github.com/chrissnell/misolweather/internal/types"
	"github.com/chrissnell/misolweather/internal/weatherstations"
	"github.com/chrissnell/misolweather/internal/weatherstations/misol"
	"github.com/chrissnell/misolweather/pkg/config"
	"go.uber.org/zap"
)

// WeatherStationManager holds our active weather station backends
type WeatherStationManager struct {
	Stations []weatherstations.WeatherStation
}

// NewWeatherStationManager creates a WeatherStationManager object, populated
// with all configured stations
func NewWeatherStationManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, distributor chan types.Reading, logger *zap.SugaredLogger) (*WeatherStationManager, error) {
	wsm := WeatherStationManager{}

	devices, err := configProvider.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("could not load device configuration: %w", err)
	}

	for _, device := range devices {
		switch device.Type {
		case "misol":
			log.Infof("Initializing Misol weather station [%v]", device.Name)
			station := misol.NewStation(ctx, wg, configProvider, device.Name, distributor, logger)
			wsm.Stations = append(wsm.Stations, station)
		default:
			return nil, fmt.Errorf("unknown weather station type: %s", device.Type)
		}
	}

	return &wsm, nil
}

// StartWeatherStations starts all configured stations
func (wsm *WeatherStationManager) StartWeatherStations() error {
	for _, station := range wsm.Stations {
		log.Infof("Starting weather station %v ...", station.StationName())
		if err := station.StartWeatherStation(); err != nil {
			return err
		}
	}

	return nil
}
