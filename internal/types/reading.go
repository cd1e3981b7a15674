// Package types defines the core data types shared between weather stations,
// storage backends, and controllers.
package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Value is one sample on a measurement channel: either a finite reading or
// "no reading".  The zero Value means no reading.  Stations must never fold a
// sensor sentinel into a numeric zero; they set Valid=false instead.
type Value struct {
	Float64 float64
	Valid   bool
}

// NewValue returns a valid Value holding v.
func NewValue(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// MarshalJSON renders an invalid Value as null so API consumers can tell
// "no reading" apart from zero.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// Value implements driver.Valuer so readings can be stored with database/sql
// and GORM, mapping "no reading" to SQL NULL.
func (v Value) Value() (driver.Value, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.Float64, nil
}

// Scan implements sql.Scanner.
func (v *Value) Scan(src interface{}) error {
	if src == nil {
		*v = Value{}
		return nil
	}
	switch s := src.(type) {
	case float64:
		*v = Value{Float64: s, Valid: true}
	case int64:
		*v = Value{Float64: float64(s), Valid: true}
	default:
		return fmt.Errorf("cannot scan %T into types.Value", src)
	}
	return nil
}

// Bool is a boolean channel sample with the same validity semantics as Value.
type Bool struct {
	Bool  bool
	Valid bool
}

// NewBool returns a valid Bool holding b.
func NewBool(b bool) Bool {
	return Bool{Bool: b, Valid: true}
}

func (b Bool) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(b.Bool)
}

func (b Bool) Value() (driver.Value, error) {
	if !b.Valid {
		return nil, nil
	}
	return b.Bool, nil
}

func (b *Bool) Scan(src interface{}) error {
	if src == nil {
		*b = Bool{}
		return nil
	}
	switch s := src.(type) {
	case bool:
		*b = Bool{Bool: s, Valid: true}
	case int64:
		*b = Bool{Bool: s != 0, Valid: true}
	default:
		return fmt.Errorf("cannot scan %T into types.Bool", src)
	}
	return nil
}

// Reading is one decoded weather observation.  Every measurement channel is
// either a finite value or an explicit "no reading"; a Reading with all
// channels invalid is published when a station's communication watchdog fires.
type Reading struct {
	Timestamp   time.Time `gorm:"column:time" json:"timestamp"`
	StationName string    `gorm:"column:stationname" json:"station_name"`
	StationType string    `gorm:"column:stationtype" json:"station_type"`

	Temperature Value `gorm:"column:temperature" json:"temperature"`     // °C
	Humidity    Value `gorm:"column:humidity" json:"humidity"`           // %
	Pressure    Value `gorm:"column:pressure" json:"pressure"`           // hPa
	WindSpeed   Value `gorm:"column:windspeed" json:"wind_speed"`        // km/h
	WindGust    Value `gorm:"column:windgust" json:"wind_gust"`          // km/h
	WindDir     Value `gorm:"column:winddir" json:"wind_dir"`            // degrees
	RainTotal   Value `gorm:"column:raintotal" json:"rain_total"`        // mm, running counter
	RainRate    Value `gorm:"column:rainrate" json:"rain_rate"`          // mm/h
	UVIntensity Value `gorm:"column:uvintensity" json:"uv_intensity"`    // mW/m²
	UVIndex     Value `gorm:"column:uvindex" json:"uv_index"`
	Illuminance Value `gorm:"column:illuminance" json:"illuminance"`     // lux

	BatteryLow Bool `gorm:"column:batterylow" json:"battery_low"`
	Night      Bool `gorm:"column:night" json:"night"`

	// Descriptive text channels derived from the numeric ones.  Empty when
	// the source channel has no reading.
	CompassDirection string `gorm:"column:compassdirection" json:"compass_direction,omitempty"`
	WindDescription  string `gorm:"column:winddescription" json:"wind_description,omitempty"`
	LightDescription string `gorm:"column:lightdescription" json:"light_description,omitempty"`
	RainDescription  string `gorm:"column:raindescription" json:"rain_description,omitempty"`
}

// TableName customizes the table name used by GORM-backed storage engines.
func (Reading) TableName() string {
	return "readings"
}

// Empty reports whether no channel carries a reading.  Stations publish an
// empty Reading when their communication watchdog fires; consumers must not
// treat one as proof the station is alive.
func (r Reading) Empty() bool {
	for _, v := range []Value{
		r.Temperature, r.Humidity, r.Pressure,
		r.WindSpeed, r.WindGust, r.WindDir,
		r.RainTotal, r.RainRate, r.UVIntensity,
		r.UVIndex, r.Illuminance,
	} {
		if v.Valid {
			return false
		}
	}
	return !r.BatteryLow.Valid && !r.Night.Valid
}
