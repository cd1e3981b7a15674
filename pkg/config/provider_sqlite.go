package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	devices, err := s.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}
	config.Devices = devices

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	return config, nil
}

// GetDevices returns device configurations from the database
func (s *SQLiteProvider) GetDevices() ([]DeviceData, error) {
	query := `
		SELECT name, type, hostname, port, serial_device, baud,
		       north_correction, secondary_directions,
		       night_threshold_lower, night_threshold_upper,
		       precipitation_interval, communication_timeout, poll_interval
		FROM devices
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []DeviceData
	for rows.Next() {
		var d DeviceData
		var hostname, port, serialDevice sql.NullString
		var baud, northCorrection sql.NullInt64
		var secondaryDirections sql.NullBool
		var nightLower, nightUpper sql.NullFloat64
		var precipInterval, commTimeout, pollInterval sql.NullString

		err := rows.Scan(&d.Name, &d.Type, &hostname, &port, &serialDevice, &baud,
			&northCorrection, &secondaryDirections, &nightLower, &nightUpper,
			&precipInterval, &commTimeout, &pollInterval)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}

		d.Hostname = hostname.String
		d.Port = port.String
		d.SerialDevice = serialDevice.String
		d.Baud = int(baud.Int64)
		d.NorthCorrection = int(northCorrection.Int64)
		d.SecondaryDirections = secondaryDirections.Bool
		d.NightThresholdLower = nightLower.Float64
		d.NightThresholdUpper = nightUpper.Float64
		d.PrecipitationInterval = precipInterval.String
		d.CommunicationTimeout = commTimeout.String
		d.PollInterval = pollInterval.String

		devices = append(devices, d)
	}

	return devices, rows.Err()
}

// GetStorageConfig returns storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}

	var connString sql.NullString
	err := s.db.QueryRow(`SELECT connection_string FROM storage_timescaledb LIMIT 1`).Scan(&connString)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query timescaledb storage config: %w", err)
	}
	if connString.Valid && connString.String != "" {
		storage.TimescaleDB = &TimescaleDBData{ConnectionString: connString.String}
	}

	var path sql.NullString
	err = s.db.QueryRow(`SELECT path FROM storage_sqlite LIMIT 1`).Scan(&path)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query sqlite storage config: %w", err)
	}
	if path.Valid && path.String != "" {
		storage.SQLite = &SQLiteData{Path: path.String}
	}

	return storage, nil
}

// GetControllers returns controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT type, rest_cert, rest_key, rest_port, rest_listen_addr
		FROM controllers
		ORDER BY type
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var c ControllerData
		var cert, key, listenAddr sql.NullString
		var port sql.NullInt64

		if err := rows.Scan(&c.Type, &cert, &key, &port, &listenAddr); err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}

		if c.Type == "rest" || c.Type == "restserver" {
			c.RESTServer = &RESTServerData{
				Cert:       cert.String,
				Key:        key.String,
				Port:       int(port.Int64),
				ListenAddr: listenAddr.String,
			}
		}

		controllers = append(controllers, c)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false; SQLite configs can be edited in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
