package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"valid", NewValue(21.5), "21.5"},
		{"valid zero", NewValue(0), "0"},
		{"no reading", Value{}, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tt.want {
				t.Errorf("Marshal = %s, want %s", b, tt.want)
			}
		})
	}
}

func TestValueSQL(t *testing.T) {
	v, err := NewValue(3.36).Value()
	if err != nil || v != 3.36 {
		t.Errorf("Value() = %v, %v; want 3.36, nil", v, err)
	}

	v, err = (Value{}).Value()
	if err != nil || v != nil {
		t.Errorf("Value() on no reading = %v, %v; want nil, nil", v, err)
	}

	var scanned Value
	if err := scanned.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if scanned.Valid {
		t.Error("scanning NULL produced a valid Value")
	}
	if err := scanned.Scan(float64(12.5)); err != nil {
		t.Fatal(err)
	}
	if !scanned.Valid || scanned.Float64 != 12.5 {
		t.Errorf("scanned = %+v, want valid 12.5", scanned)
	}
	if err := scanned.Scan(int64(7)); err != nil {
		t.Fatal(err)
	}
	if !scanned.Valid || scanned.Float64 != 7 {
		t.Errorf("scanned = %+v, want valid 7", scanned)
	}
	if err := scanned.Scan("bogus"); err == nil {
		t.Error("scanning a string did not error")
	}
}

func TestBoolSQLAndJSON(t *testing.T) {
	b, _ := json.Marshal(NewBool(true))
	if string(b) != "true" {
		t.Errorf("Marshal = %s, want true", b)
	}
	b, _ = json.Marshal(Bool{})
	if string(b) != "null" {
		t.Errorf("Marshal = %s, want null", b)
	}

	var scanned Bool
	if err := scanned.Scan(int64(1)); err != nil {
		t.Fatal(err)
	}
	if !scanned.Valid || !scanned.Bool {
		t.Errorf("scanned = %+v, want valid true", scanned)
	}
	if err := scanned.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if scanned.Valid {
		t.Error("scanning NULL produced a valid Bool")
	}
}

func TestReadingEmpty(t *testing.T) {
	tests := []struct {
		name string
		r    Reading
		want bool
	}{
		{"watchdog reset reading", Reading{StationName: "backyard", StationType: "misol"}, true},
		{"one numeric channel", Reading{Temperature: NewValue(21.5)}, false},
		{"only a boolean channel", Reading{BatteryLow: NewBool(false)}, false},
		{"only night state", Reading{Night: NewBool(true)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadingJSONDistinguishesMissingChannels(t *testing.T) {
	r := Reading{
		StationName: "backyard",
		Temperature: NewValue(21.5),
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)

	if !strings.Contains(s, `"temperature":21.5`) {
		t.Errorf("temperature not rendered as a number: %s", s)
	}
	if !strings.Contains(s, `"humidity":null`) {
		t.Errorf("missing humidity not rendered as null: %s", s)
	}
	if !strings.Contains(s, `"night":null`) {
		t.Errorf("missing night flag not rendered as null: %s", s)
	}
}
