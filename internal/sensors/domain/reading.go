package sensors

import (
	"fmt"
	"math"
	"time"
)

// Source discriminates the origin of a sensor reading.
type Source string

const (
	SourceMicrosensor Source = "microsensor"
	SourceStation     Source = "station"
)

// Microsensor is a normalized crowdsourced PM2.5 sensor reading.
type Microsensor struct {
	ID         string             `json:"id"`
	Latitude   float64            `json:"latitude"`
	Longitude  float64            `json:"longitude"`
	LocalIndex int                `json:"local_index"`
	PM25Avg60  float64            `json:"pm25_60minute"`
	ObservedAt time.Time          `json:"observed_at"`
	Raw        map[string]float64 `json:"raw,omitempty"`
}

// StationReading is a normalized government monitoring station observation.
type StationReading struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	NationalIndex float64   `json:"national_index"`
	ObservedAt    time.Time `json:"observed_at"`
}

// Coordinates implements geo.Locatable.
func (m Microsensor) Coordinates() (float64, float64) { return m.Latitude, m.Longitude }

// Coordinates implements geo.Locatable.
func (s StationReading) Coordinates() (float64, float64) { return s.Latitude, s.Longitude }

// LocalIndex derives the local air-quality band from a PM2.5 concentration.
// The result is floored at 1 so the lowest band stays distinguishable from
// missing data.
func LocalIndex(pm25 float64) int {
	index := int(math.Ceil(pm25 / 10))
	if index < 1 {
		return 1
	}
	return index
}

// Validate checks microsensor invariants.
func (m Microsensor) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: empty id", ErrMalformedReading)
	}
	if err := validateCoordinates(m.Latitude, m.Longitude); err != nil {
		return err
	}
	if m.LocalIndex < 1 {
		return fmt.Errorf("%w: local index below 1", ErrMalformedReading)
	}
	return nil
}

// Validate checks station reading invariants.
func (s StationReading) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty id", ErrMalformedReading)
	}
	return validateCoordinates(s.Latitude, s.Longitude)
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrMalformedReading, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrMalformedReading, lon)
	}
	return nil
}
