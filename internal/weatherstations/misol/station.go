// Package misol implements a driver for Misol/Fine Offset WH24-family
// weather station heads, which emit a proprietary 17- or 21-byte binary
// frame over a one-directional serial link every few seconds.
package misol

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/chrissnell/misolweather/internal/log"
	"github.com/chrissnell/misolweather/internal/types"
	"github.com/chrissnell/misolweather/internal/weatherstations"
	"github.com/chrissnell/misolweather/pkg/config"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

const (
	defaultBaud                = 9600
	defaultPollInterval        = 500 * time.Millisecond
	defaultCommTimeout         = 2 * time.Minute
	defaultPrecipInterval      = 3 * time.Minute
	defaultNightThresholdLower = 4.5
	defaultNightThresholdUpper = 5.5
)

// Station implements a Misol weather station head.  The link is receive-only:
// there is no retransmission or command channel, so the driver just polls for
// buffered bytes, validates whatever arrived, and recovers locally from
// anything malformed.
type Station struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	netConn            net.Conn
	rwc                io.ReadWriteCloser
	config             config.DeviceData
	configProvider     config.ConfigProvider
	deviceName         string
	ReadingDistributor chan types.Reading
	logger             *zap.SugaredLogger
	connecting         bool
	connectingMu       sync.RWMutex
	connected          bool
	connectedMu        sync.RWMutex

	pollInterval time.Duration
	rx           chan []byte

	// Session state below is owned exclusively by the poll loop.
	session session
	night   nightDetector
	rain    rainEstimator
}

// NewStation creates a new Misol weather station
func NewStation(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, deviceName string, distributor chan types.Reading, logger *zap.SugaredLogger) weatherstations.WeatherStation {
	station := &Station{
		ctx:                ctx,
		wg:                 wg,
		configProvider:     configProvider,
		deviceName:         deviceName,
		ReadingDistributor: distributor,
		logger:             logger,
		rx:                 make(chan []byte, 16),
	}

	// Load configuration to get device config
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		logger.Fatalf("Misol station [%s] failed to load config: %v", deviceName, err)
	}

	// Find our device configuration
	var deviceConfig *config.DeviceData
	for _, device := range cfgData.Devices {
		if device.Name == deviceName {
			deviceConfig = &device
			break
		}
	}

	if deviceConfig == nil {
		logger.Fatalf("Misol station [%s] device not found in configuration", deviceName)
	}

	station.config = *deviceConfig

	if station.config.SerialDevice == "" && (station.config.Hostname == "" || station.config.Port == "") {
		logger.Fatalf("Misol station [%s] must define either a serial device or hostname+port", station.config.Name)
	}

	if station.config.SerialDevice != "" {
		log.Info("Configuring Misol station via serial port...")
	}

	if station.config.Hostname != "" && station.config.Port != "" {
		log.Info("Configuring Misol station via TCP/IP")
	}

	// The WH24 RF bridge talks at 9600 baud
	if station.config.Baud == 0 {
		station.config.Baud = defaultBaud
	}

	lower := station.config.NightThresholdLower
	upper := station.config.NightThresholdUpper
	if lower == 0 && upper == 0 {
		lower = defaultNightThresholdLower
		upper = defaultNightThresholdUpper
	}
	if lower > upper {
		logger.Warnf("Misol station [%s] night_threshold_lower %v exceeds upper %v; day/night output may chatter", deviceName, lower, upper)
	}

	station.night = nightDetector{lower: lower, upper: upper}
	station.rain = rainEstimator{interval: parseDurationOrDefault(station.config.PrecipitationInterval, defaultPrecipInterval, deviceName, "precipitation_interval", logger)}
	station.session = session{timeout: parseDurationOrDefault(station.config.CommunicationTimeout, defaultCommTimeout, deviceName, "communication_timeout", logger)}
	station.pollInterval = parseDurationOrDefault(station.config.PollInterval, defaultPollInterval, deviceName, "poll_interval", logger)

	return station
}

func parseDurationOrDefault(s string, def time.Duration, deviceName, field string, logger *zap.SugaredLogger) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		logger.Warnf("Misol station [%s] invalid %s %q; using %v", deviceName, field, s, def)
		return def
	}
	return d
}

func (s *Station) StationName() string {
	return s.config.Name
}

// StartWeatherStation connects to the station and launches the reader and
// poll-loop goroutines
func (s *Station) StartWeatherStation() error {
	log.Infof("Starting Misol weather station [%v]...", s.config.Name)

	s.Connect()

	s.wg.Add(2)
	go s.readPackets()
	go s.pollLoop()

	return nil
}

// readPackets moves bytes from the link into the rx channel.  It owns the
// connection; the poll loop never touches it.
func (s *Station) readPackets() {
	defer s.wg.Done()

	buf := make([]byte, 64)
	for {
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling readPackets()")
			return
		default:
			n, err := s.rwc.Read(buf)
			if err != nil {
				s.logger.Errorf("error reading from station [%v]: %v", s.config.Name, err)
				s.rwc.Close()
				if len(s.config.Hostname) > 0 {
					s.netConn.Close()
				}
				s.logger.Info("attempting to reconnect...")
				s.Connect()
				continue
			}
			if n == 0 {
				continue
			}
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.rx <- chunk:
			case <-s.ctx.Done():
				return
			}
		}
	}
}

// pollLoop drives the session: on every tick it first runs the watchdog
// check, then drains whatever bytes arrived since the last tick into one
// buffer and processes it.  All session state is confined to this goroutine.
func (s *Station) pollLoop() {
	defer s.wg.Done()
	log.Info("starting Misol poll loop")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling pollLoop()")
			return
		case <-ticker.C:
			s.tick(time.Now())
		}
	}
}

// tick is one scheduler pass: watchdog first, then at most one buffered
// packet.
func (s *Station) tick(now time.Time) {
	if s.session.expired(now) {
		log.Warnf("Misol station [%v]: communication timeout, invalidating all channels", s.config.Name)
		s.resetChannels(now)
	}

	buf := s.drainPending()
	if len(buf) == 0 {
		return
	}

	first := s.session.markAlive(now)
	if first {
		log.Infof("First packet received from Misol station [%v]", s.config.Name)
	}
	log.Debugw("packet received", "station", s.config.Name, "bytes", hex.EncodeToString(buf))

	s.processBuffer(buf, now)
}

// drainPending gathers every byte chunk queued by the reader into a single
// buffer, without blocking.
func (s *Station) drainPending() []byte {
	var buf []byte
	for {
		select {
		case chunk := <-s.rx:
			buf = append(buf, chunk...)
		default:
			return buf
		}
	}
}

// processBuffer classifies one received buffer and, when valid, decodes it
// and publishes a reading to the distributor.
func (s *Station) processBuffer(buf []byte, now time.Time) {
	packetType := ClassifyPacket(buf)
	if packetType == WrongPacket {
		log.Warnf("Misol station [%v]: unknown packet received, discarding: %s", s.config.Name, hex.EncodeToString(buf))
		return
	}

	obs := DecodeObservation(buf, packetType == BasicPacketWithPressure)

	r := types.Reading{
		Timestamp:   now,
		StationName: s.config.Name,
		StationType: "misol",
		Temperature: obs.Temperature,
		Humidity:    obs.Humidity,
		Pressure:    obs.Pressure,
		WindSpeed:   obs.WindSpeed,
		WindGust:    obs.WindGust,
		WindDir:     obs.WindDir,
		RainTotal:   obs.RainTotal,
		UVIntensity: obs.UVIntensity,
		UVIndex:     obs.UVIndex,
		Illuminance: obs.Illuminance,
		BatteryLow:  types.NewBool(obs.BatteryLow),
	}

	// north_correction affects only the compass label; the numeric channel
	// always carries the raw degrees off the wire.
	if obs.WindDir.Valid {
		r.CompassDirection = CompassDirection(obs.WindDir.Float64, s.config.NorthCorrection, s.config.SecondaryDirections)
	}

	if obs.WindSpeed.Valid {
		r.WindDescription = WindDescription(obs.WindSpeed.Float64)
	}

	if obs.Illuminance.Valid {
		r.LightDescription = LightDescription(obs.Illuminance.Float64)
	}

	if obs.UVIntensity.Valid {
		r.Night = types.NewBool(s.night.update(obs.UVIntensity.Float64))
	}

	if rate, ok := s.rain.update(obs.RainCounter, obs.RainCounterValid, now); ok {
		r.RainRate = types.NewValue(rate)
		r.RainDescription = PrecipitationDescription(rate)
	}

	log.Debugf("Misol [%s] sending reading to distributor: %+v", s.config.Name, r)
	s.ReadingDistributor <- r
}

// resetChannels is the watchdog action: deactivate the session, reset both
// stateful detectors, and re-drive every published channel to "no reading".
func (s *Station) resetChannels(now time.Time) {
	s.session.reset()
	s.night.reset()
	s.rain.reset()

	s.ReadingDistributor <- types.Reading{
		Timestamp:   now,
		StationName: s.config.Name,
		StationType: "misol",
	}
}

func normalizeDegrees(d float64) float64 {
	for d < 0 {
		d += 360
	}
	for d >= 360 {
		d -= 360
	}
	return d
}

// Connect connects to a Misol station over serial or network
func (s *Station) Connect() {
	if len(s.config.SerialDevice) > 0 {
		s.connectToSerialStation()
	} else if (len(s.config.Hostname) > 0) && (len(s.config.Port) > 0) {
		s.connectToNetworkStation()
	} else {
		s.logger.Fatal("must provide either network hostname+port or serial device in config")
	}
}

// connectToSerialStation connects to a Misol station over a serial port
func (s *Station) connectToSerialStation() {
	var err error

	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		s.logger.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	// A connection attempt is not in progress so we'll start a new one
	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	s.logger.Infof("connecting to %v ...", s.config.SerialDevice)

	for {
		sc := &serial.Config{Name: s.config.SerialDevice, Baud: s.config.Baud}
		s.logger.Debugf("attempting to open serial port %s at %d baud", s.config.SerialDevice, s.config.Baud)
		s.rwc, err = serial.OpenPort(sc)

		if err != nil {
			s.logger.Errorf("failed to open serial port %s: %v", s.config.SerialDevice, err)
			s.logger.Error("sleeping 30 seconds and trying again")

			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(30 * time.Second):
			}
		} else {
			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			return
		}
	}
}

// connectToNetworkStation connects to a Misol station console served over TCP/IP
func (s *Station) connectToNetworkStation() {
	var err error

	console := fmt.Sprint(s.config.Hostname, ":", s.config.Port)

	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		log.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	// A connection attempt is not in progress so we'll start a new one
	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	log.Info("connecting to:", console)

	for {
		s.netConn, err = net.DialTimeout("tcp", console, 10*time.Second)

		if err != nil {
			log.Errorf("could not connect to %v: %v", console, err)
			log.Error("sleeping 5 seconds and trying again.")

			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(5 * time.Second):
			}
		} else {
			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			// Create an io.ReadWriteCloser for our connection
			s.rwc = io.ReadWriteCloser(s.netConn)
			return
		}
	}
}
