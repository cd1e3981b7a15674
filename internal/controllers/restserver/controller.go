// Package restserver implements a small REST API serving the latest reading
// and liveness status for each configured station.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/misolweather/internal/log"
	"github.com/chrissnell/misolweather/internal/types"
	"github.com/chrissnell/misolweather/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const defaultStationTimeout = 2 * time.Minute

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	logger     *zap.SugaredLogger

	readings <-chan types.Reading
	timeouts map[string]time.Duration // station name -> communication timeout

	latestMu sync.RWMutex
	latest   map[string]types.Reading
	// lastLive holds the timestamp of the last non-empty reading per
	// station.  Watchdog reset readings update latest but never lastLive,
	// so liveness follows the watchdog instead of contradicting it.
	lastLive map[string]time.Time
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, rc config.RESTServerData, readings <-chan types.Reading, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		logger:     logger,
		readings:   readings,
		timeouts:   make(map[string]time.Duration),
		latest:     make(map[string]types.Reading),
		lastLive:   make(map[string]time.Time),
	}

	devices, err := configProvider.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("error loading device configuration: %w", err)
	}

	// Status reporting uses each station's own communication timeout
	for _, device := range devices {
		timeout := defaultStationTimeout
		if device.CommunicationTimeout != "" {
			if d, err := time.ParseDuration(device.CommunicationTimeout); err == nil && d > 0 {
				timeout = d
			}
		}
		ctrl.timeouts[device.Name] = timeout
	}

	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}
	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = router
	ctrl.restConfig = rc

	return ctrl, nil
}

// StartController starts the reading consumer and the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")

	c.wg.Add(1)
	go c.consumeReadings()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// consumeReadings keeps the in-memory view of the most recent reading per
// station up to date
func (c *Controller) consumeReadings() {
	defer c.wg.Done()

	for {
		select {
		case r := <-c.readings:
			c.updateLatest(r)
		case <-c.ctx.Done():
			return
		}
	}
}

// updateLatest stores one reading.  Empty readings (the watchdog reset)
// replace the latest view so consumers see the invalidated channels, but do
// not count as liveness.
func (c *Controller) updateLatest(r types.Reading) {
	c.latestMu.Lock()
	c.latest[r.StationName] = r
	if !r.Empty() {
		c.lastLive[r.StationName] = r.Timestamp
	}
	c.latestMu.Unlock()
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/latest", c.GetLatest)
	router.HandleFunc("/latest/{station}", c.GetLatestForStation)
	router.HandleFunc("/status", c.GetStatus)

	return router
}
