package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/misolweather/internal/controllers/restserver"
	"github.com/chrissnell/misolweather/internal/types"
	"github.com/chrissnell/misolweather/pkg/config"
	"go.uber.org/zap"
)

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// ControllerManager holds our active controller backends
type ControllerManager struct {
	controllers []Controller
	logger      *zap.SugaredLogger
}

// NewControllerManager creates a new controller manager.  readings receives a
// copy of every distributed reading for controllers that track live state.
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, readings <-chan types.Reading, logger *zap.SugaredLogger) (*ControllerManager, error) {
	cm := &ControllerManager{
		logger: logger,
	}

	controllers, err := configProvider.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("could not load controller configuration: %w", err)
	}

	for _, cc := range controllers {
		switch cc.Type {
		case "rest", "restserver":
			if cc.RESTServer == nil {
				return nil, fmt.Errorf("rest controller configured without a rest section")
			}
			controller, err := restserver.NewController(ctx, wg, configProvider, *cc.RESTServer, readings, logger)
			if err != nil {
				return nil, fmt.Errorf("error creating REST server controller: %w", err)
			}
			cm.controllers = append(cm.controllers, controller)
		default:
			return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
		}
	}

	return cm, nil
}

// StartControllers starts all configured controllers
func (cm *ControllerManager) StartControllers() error {
	cm.logger.Info("Starting controller manager...")

	for _, controller := range cm.controllers {
		if err := controller.StartController(); err != nil {
			return fmt.Errorf("error starting controller: %w", err)
		}
	}

	cm.logger.Infof("Started %d controllers successfully", len(cm.controllers))
	return nil
}
