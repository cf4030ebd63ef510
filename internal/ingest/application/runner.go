package application

import (
	"context"
	"errors"
	"log"
	"time"

	alertapp "github.com/Ppatel122/AirQualityDashboard/internal/alerts/application"
	alerts "github.com/Ppatel122/AirQualityDashboard/internal/alerts/domain"
	"github.com/Ppatel122/AirQualityDashboard/internal/observability/metrics"
	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

// MicrosensorFeed fetches and normalizes microsensor readings. The int
// return counts malformed rows skipped during normalization.
type MicrosensorFeed interface {
	Fetch(ctx context.Context) ([]sensors.Microsensor, int, error)
}

// StationFeed fetches and normalizes station readings.
type StationFeed interface {
	Fetch(ctx context.Context) ([]sensors.StationReading, int, error)
}

// SensorStore persists normalized readings per source.
type SensorStore interface {
	UpsertMicrosensors(ctx context.Context, readings []sensors.Microsensor) error
	UpsertStations(ctx context.Context, readings []sensors.StationReading) error
}

// AlertSource returns all currently registered alerts.
type AlertSource interface {
	ListAll(ctx context.Context) ([]alerts.Alert, error)
}

// Evaluator runs the alert state machine over a sensor snapshot.
type Evaluator interface {
	EvaluateAll(ctx context.Context, alertList []alerts.Alert, micro []sensors.Microsensor, stations []sensors.StationReading) error
}

// Runner executes one ingestion tick: fetch both feeds, persist the
// normalized readings, then evaluate every registered alert against the
// fresh snapshot. Any fetch or store failure aborts the remainder of the
// tick; already-committed upserts stay.
type Runner struct {
	microFeed   MicrosensorFeed
	stationFeed StationFeed
	store       SensorStore
	alerts      AlertSource
	evaluator   Evaluator
	logger      *log.Logger
}

// NewRunner constructs a Runner.
func NewRunner(microFeed MicrosensorFeed, stationFeed StationFeed, store SensorStore, alertSource AlertSource, evaluator Evaluator, logger *log.Logger) (*Runner, error) {
	if microFeed == nil || stationFeed == nil {
		return nil, errors.New("ingest runner: nil feed")
	}
	if store == nil {
		return nil, errors.New("ingest runner: nil sensor store")
	}
	if alertSource == nil {
		return nil, errors.New("ingest runner: nil alert source")
	}
	if evaluator == nil {
		return nil, errors.New("ingest runner: nil evaluator")
	}
	if logger == nil {
		return nil, errors.New("ingest runner: nil logger")
	}
	return &Runner{
		microFeed:   microFeed,
		stationFeed: stationFeed,
		store:       store,
		alerts:      alertSource,
		evaluator:   evaluator,
		logger:      logger,
	}, nil
}

// RunOnce executes a single tick. Errors are returned for the scheduler to
// log; the next tick starts independently.
func (r *Runner) RunOnce(ctx context.Context, now time.Time) error {
	if r == nil {
		return errors.New("ingest runner: nil runner")
	}
	start := time.Now()
	err := r.runTick(ctx, now)
	metrics.ObserveTickDuration(time.Since(start))
	if err != nil {
		metrics.IncTick(metrics.ResultError)
		return err
	}
	metrics.IncTick(metrics.ResultSuccess)
	return nil
}

func (r *Runner) runTick(ctx context.Context, now time.Time) error {
	micro, microSkipped, err := r.microFeed.Fetch(ctx)
	if err != nil {
		metrics.IncFeedFetch(string(sensors.SourceMicrosensor), metrics.ResultError)
		return err
	}
	metrics.IncFeedFetch(string(sensors.SourceMicrosensor), metrics.ResultSuccess)

	stations, stationSkipped, err := r.stationFeed.Fetch(ctx)
	if err != nil {
		metrics.IncFeedFetch(string(sensors.SourceStation), metrics.ResultError)
		return err
	}
	metrics.IncFeedFetch(string(sensors.SourceStation), metrics.ResultSuccess)

	if microSkipped > 0 || stationSkipped > 0 {
		metrics.AddRowsSkipped(string(sensors.SourceMicrosensor), microSkipped)
		metrics.AddRowsSkipped(string(sensors.SourceStation), stationSkipped)
		r.logger.Printf("tick %s: skipped malformed rows: microsensor=%d station=%d",
			now.Format(time.RFC3339), microSkipped, stationSkipped)
	}

	if err := r.store.UpsertMicrosensors(ctx, micro); err != nil {
		return err
	}
	metrics.AddSensorsUpserted(string(sensors.SourceMicrosensor), len(micro))

	if err := r.store.UpsertStations(ctx, stations); err != nil {
		return err
	}
	metrics.AddSensorsUpserted(string(sensors.SourceStation), len(stations))

	alertList, err := r.alerts.ListAll(ctx)
	if err != nil {
		return err
	}
	r.logger.Printf("tick %s: sensors microsensor=%d station=%d alerts=%d",
		now.Format(time.RFC3339), len(micro), len(stations), len(alertList))

	return r.evaluator.EvaluateAll(ctx, alertList, micro, stations)
}

var _ Evaluator = (*alertapp.Service)(nil)
