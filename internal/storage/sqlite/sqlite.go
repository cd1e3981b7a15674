// Package sqlite implements a local SQLite archive storage backend, useful
// for stations running on a single board without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/chrissnell/misolweather/internal/log"
	"github.com/chrissnell/misolweather/internal/types"
	_ "modernc.org/sqlite"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS readings (
	time timestamp NOT NULL,
	stationname text,
	stationtype text,
	temperature real,
	humidity real,
	pressure real,
	windspeed real,
	windgust real,
	winddir real,
	raintotal real,
	rainrate real,
	uvintensity real,
	uvindex real,
	illuminance real,
	batterylow boolean,
	night boolean,
	compassdirection text,
	winddescription text,
	lightdescription text,
	raindescription text
);`

const insertReadingSQL = `INSERT INTO readings (
	time, stationname, stationtype, temperature, humidity, pressure,
	windspeed, windgust, winddir, raintotal, rainrate, uvintensity,
	uvindex, illuminance, batterylow, night,
	compassdirection, winddescription, lightdescription, raindescription
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Storage holds the connection to a SQLite archive database
type Storage struct {
	db *sql.DB
}

// New sets up a new SQLite storage backend
func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite archive %s: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite archive: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create readings table: %w", err)
	}

	return &Storage{db: db}, nil
}

// StartStorageEngine creates a goroutine loop to receive readings and write
// them to the archive
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting SQLite storage engine...")
	readingChan := make(chan types.Reading, 10)
	go s.processMetrics(ctx, wg, readingChan)
	return readingChan
}

func (s *Storage) processMetrics(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			if err := s.StoreReading(ctx, r); err != nil {
				log.Errorf("could not store reading: %v", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received.  Cancelling readings processor.")
			s.db.Close()
			return
		}
	}
}

// StoreReading stores a reading value in the SQLite archive
func (s *Storage) StoreReading(ctx context.Context, r types.Reading) error {
	_, err := s.db.ExecContext(ctx, insertReadingSQL,
		r.Timestamp, r.StationName, r.StationType,
		r.Temperature, r.Humidity, r.Pressure,
		r.WindSpeed, r.WindGust, r.WindDir,
		r.RainTotal, r.RainRate, r.UVIntensity,
		r.UVIndex, r.Illuminance, r.BatteryLow, r.Night,
		r.CompassDirection, r.WindDescription, r.LightDescription, r.RainDescription)
	return err
}
