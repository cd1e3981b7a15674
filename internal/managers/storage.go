// Package managers wires configured stations, storage engines, and
// controllers together around the reading distributor.
package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/misolweather/internal/storage"
	"github.com/chrissnell/misolweather/internal/storage/sqlite"
	"github.com/chrissnell/misolweather/internal/storage/timescaledb"
	"github.com/chrissnell/misolweather/internal/types"
	"github.com/chrissnell/misolweather/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines            []StorageEngine
	ReadingDistributor chan types.Reading

	subscribersMu sync.Mutex
	subscribers   []chan types.Reading
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing readings to the engine
type StorageEngine struct {
	Engine storage.StorageEngineInterface
	C      chan<- types.Reading
}

// NewStorageManager creates a StorageManager object, populated with all configured StorageEngines
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider) (*StorageManager, error) {
	s := StorageManager{}

	// Initialize our channel for passing readings to the distributor
	s.ReadingDistributor = make(chan types.Reading, 20)

	// Start our reading distributor to fan received readings out to storage
	// backends and subscribers
	go s.startReadingDistributor(ctx, wg)

	storageConfig, err := configProvider.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load storage configuration: %w", err)
	}

	if storageConfig.TimescaleDB != nil && storageConfig.TimescaleDB.ConnectionString != "" {
		engine, err := timescaledb.New(ctx, storageConfig.TimescaleDB.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
		s.Engines = append(s.Engines, StorageEngine{
			Engine: engine,
			C:      engine.StartStorageEngine(ctx, wg),
		})
	}

	if storageConfig.SQLite != nil && storageConfig.SQLite.Path != "" {
		engine, err := sqlite.New(ctx, storageConfig.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
		s.Engines = append(s.Engines, StorageEngine{
			Engine: engine,
			C:      engine.StartStorageEngine(ctx, wg),
		})
	}

	return &s, nil
}

// Subscribe returns a channel receiving a copy of every distributed reading.
// Used by controllers that keep an in-memory view of station state.
func (s *StorageManager) Subscribe() <-chan types.Reading {
	c := make(chan types.Reading, 20)
	s.subscribersMu.Lock()
	s.subscribers = append(s.subscribers, c)
	s.subscribersMu.Unlock()
	return c
}

// startReadingDistributor receives readings from stations and fans them out
// to the various storage backends and subscribers
func (s *StorageManager) startReadingDistributor(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-s.ReadingDistributor:
			for _, e := range s.Engines {
				e.C <- r
			}
			s.subscribersMu.Lock()
			for _, c := range s.subscribers {
				// Drop rather than block if a subscriber is slow
				select {
				case c <- r:
				default:
				}
			}
			s.subscribersMu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
