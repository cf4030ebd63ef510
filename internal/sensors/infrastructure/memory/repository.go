package memory

import (
	"context"
	"sync"

	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

// SensorRepository is an in-memory sensor store for demo/testing.
type SensorRepository struct {
	mu           sync.RWMutex
	microsensors map[string]sensors.Microsensor
	stations     map[string]sensors.StationReading
}

// NewSensorRepository constructs a repository.
func NewSensorRepository() *SensorRepository {
	return &SensorRepository{
		microsensors: make(map[string]sensors.Microsensor),
		stations:     make(map[string]sensors.StationReading),
	}
}

// UpsertMicrosensors writes or replaces microsensor records keyed by id.
func (r *SensorRepository) UpsertMicrosensors(ctx context.Context, readings []sensors.Microsensor) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reading := range readings {
		if err := reading.Validate(); err != nil {
			return err
		}
		r.microsensors[reading.ID] = reading
	}
	return nil
}

// UpsertStations writes or replaces station records keyed by id.
func (r *SensorRepository) UpsertStations(ctx context.Context, readings []sensors.StationReading) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reading := range readings {
		if err := reading.Validate(); err != nil {
			return err
		}
		r.stations[reading.ID] = reading
	}
	return nil
}

// ListMicrosensors returns all stored microsensor records.
func (r *SensorRepository) ListMicrosensors(ctx context.Context) ([]sensors.Microsensor, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	readings := make([]sensors.Microsensor, 0, len(r.microsensors))
	for _, reading := range r.microsensors {
		readings = append(readings, reading)
	}
	return readings, nil
}

// ListStations returns all stored station records.
func (r *SensorRepository) ListStations(ctx context.Context) ([]sensors.StationReading, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	readings := make([]sensors.StationReading, 0, len(r.stations))
	for _, reading := range r.stations {
		readings = append(readings, reading)
	}
	return readings, nil
}
