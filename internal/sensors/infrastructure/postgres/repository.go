package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

const (
	defaultMicrosensorTable = "microsensor_readings"
	defaultStationTable     = "station_readings"
)

// SensorRepository persists normalized sensor readings, one table per source.
// Each record write replaces the prior record for that id.
type SensorRepository struct {
	db               *sql.DB
	microsensorTable string
	stationTable     string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*SensorRepository)

// WithMicrosensorTable overrides the microsensor table name.
func WithMicrosensorTable(table string) RepositoryOption {
	return func(repo *SensorRepository) {
		if table != "" {
			repo.microsensorTable = table
		}
	}
}

// WithStationTable overrides the station table name.
func WithStationTable(table string) RepositoryOption {
	return func(repo *SensorRepository) {
		if table != "" {
			repo.stationTable = table
		}
	}
}

// NewSensorRepository constructs a repository with default table names.
func NewSensorRepository(db *sql.DB, opts ...RepositoryOption) *SensorRepository {
	repo := &SensorRepository{
		db:               db,
		microsensorTable: defaultMicrosensorTable,
		stationTable:     defaultStationTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// UpsertMicrosensors writes or replaces microsensor records keyed by id.
func (r *SensorRepository) UpsertMicrosensors(ctx context.Context, readings []sensors.Microsensor) error {
	if r == nil || r.db == nil {
		return errors.New("sensor repo: nil db")
	}
	if len(readings) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	latitude,
	longitude,
	local_index,
	pm25_avg_60m,
	observed_at,
	raw
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)
ON CONFLICT (id)
DO UPDATE SET
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	local_index = EXCLUDED.local_index,
	pm25_avg_60m = EXCLUDED.pm25_avg_60m,
	observed_at = EXCLUDED.observed_at,
	raw = EXCLUDED.raw,
	updated_at = NOW()`, r.microsensorTable)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", sensors.ErrStoreUnavailable, err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: prepare: %v", sensors.ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	for _, reading := range readings {
		if err := reading.Validate(); err != nil {
			_ = tx.Rollback()
			return err
		}
		raw, err := json.Marshal(reading.Raw)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(
			ctx,
			reading.ID,
			reading.Latitude,
			reading.Longitude,
			reading.LocalIndex,
			reading.PM25Avg60,
			reading.ObservedAt,
			raw,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: upsert microsensor %s: %v", sensors.ErrStoreUnavailable, reading.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", sensors.ErrStoreUnavailable, err)
	}
	return nil
}

// UpsertStations writes or replaces station records keyed by id.
func (r *SensorRepository) UpsertStations(ctx context.Context, readings []sensors.StationReading) error {
	if r == nil || r.db == nil {
		return errors.New("sensor repo: nil db")
	}
	if len(readings) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	name,
	latitude,
	longitude,
	national_index,
	observed_at
) VALUES (
	$1, $2, $3, $4, $5, $6
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	national_index = EXCLUDED.national_index,
	observed_at = EXCLUDED.observed_at,
	updated_at = NOW()`, r.stationTable)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", sensors.ErrStoreUnavailable, err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: prepare: %v", sensors.ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	for _, reading := range readings {
		if err := reading.Validate(); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(
			ctx,
			reading.ID,
			reading.Name,
			reading.Latitude,
			reading.Longitude,
			reading.NationalIndex,
			reading.ObservedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: upsert station %s: %v", sensors.ErrStoreUnavailable, reading.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", sensors.ErrStoreUnavailable, err)
	}
	return nil
}

// ListMicrosensors returns all stored microsensor records.
func (r *SensorRepository) ListMicrosensors(ctx context.Context) ([]sensors.Microsensor, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("sensor repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, latitude, longitude, local_index, pm25_avg_60m, observed_at, raw
FROM %s`, r.microsensorTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list microsensors: %v", sensors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var readings []sensors.Microsensor
	for rows.Next() {
		var reading sensors.Microsensor
		var raw []byte
		if err := rows.Scan(
			&reading.ID,
			&reading.Latitude,
			&reading.Longitude,
			&reading.LocalIndex,
			&reading.PM25Avg60,
			&reading.ObservedAt,
			&raw,
		); err != nil {
			return nil, fmt.Errorf("%w: scan microsensor: %v", sensors.ErrStoreUnavailable, err)
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &reading.Raw)
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

// ListStations returns all stored station records.
func (r *SensorRepository) ListStations(ctx context.Context) ([]sensors.StationReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("sensor repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, name, latitude, longitude, national_index, observed_at
FROM %s`, r.stationTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list stations: %v", sensors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var readings []sensors.StationReading
	for rows.Next() {
		var reading sensors.StationReading
		if err := rows.Scan(
			&reading.ID,
			&reading.Name,
			&reading.Latitude,
			&reading.Longitude,
			&reading.NationalIndex,
			&reading.ObservedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan station: %v", sensors.ErrStoreUnavailable, err)
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
