// Package config provides configuration loading from YAML files and SQLite
// databases behind a common provider interface.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDevices() ([]DeviceData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Devices     []DeviceData     `yaml:"devices" json:"devices"`
	Storage     StorageData      `yaml:"storage,omitempty" json:"storage,omitempty"`
	Controllers []ControllerData `yaml:"controllers,omitempty" json:"controllers,omitempty"`
}

// DeviceData holds configuration specific to data collection devices
type DeviceData struct {
	Name         string `yaml:"name" json:"name"`
	Type         string `yaml:"type,omitempty" json:"type,omitempty"`
	Hostname     string `yaml:"hostname,omitempty" json:"hostname,omitempty"`
	Port         string `yaml:"port,omitempty" json:"port,omitempty"`
	SerialDevice string `yaml:"serial_device,omitempty" json:"serial_device,omitempty"`
	Baud         int    `yaml:"baud,omitempty" json:"baud,omitempty"`

	// Wind-direction compass rendering
	NorthCorrection     int  `yaml:"north_correction,omitempty" json:"north_correction,omitempty"`
	SecondaryDirections bool `yaml:"secondary_directions,omitempty" json:"secondary_directions,omitempty"`

	// Day/night hysteresis thresholds on UV intensity.  Lower must not
	// exceed upper; defaults 4.5/5.5.
	NightThresholdLower float64 `yaml:"night_threshold_lower,omitempty" json:"night_threshold_lower,omitempty"`
	NightThresholdUpper float64 `yaml:"night_threshold_upper,omitempty" json:"night_threshold_upper,omitempty"`

	// Durations are parsed with time.ParseDuration (e.g. "3m", "90s").
	PrecipitationInterval string `yaml:"precipitation_interval,omitempty" json:"precipitation_interval,omitempty"`
	CommunicationTimeout  string `yaml:"communication_timeout,omitempty" json:"communication_timeout,omitempty"`
	PollInterval          string `yaml:"poll_interval,omitempty" json:"poll_interval,omitempty"`
}

// StorageData holds the configuration for various storage backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `yaml:"timescaledb,omitempty" json:"timescaledb,omitempty"`
	SQLite      *SQLiteData      `yaml:"sqlite,omitempty" json:"sqlite,omitempty"`
}

// ControllerData holds the configuration for various controller backends
type ControllerData struct {
	Type       string          `yaml:"type,omitempty" json:"type,omitempty"`
	RESTServer *RESTServerData `yaml:"rest,omitempty" json:"rest,omitempty"`
}

// Storage backend configuration structs
type TimescaleDBData struct {
	ConnectionString string `yaml:"connection_string" json:"connection_string"`
}

type SQLiteData struct {
	Path string `yaml:"path" json:"path"`
}

// RESTServerData configures the REST API controller
type RESTServerData struct {
	Cert       string `yaml:"cert,omitempty" json:"cert,omitempty"`
	Key        string `yaml:"key,omitempty" json:"key,omitempty"`
	Port       int    `yaml:"port,omitempty" json:"port,omitempty"`
	ListenAddr string `yaml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
}
