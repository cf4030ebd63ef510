package application

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	alerts "github.com/Ppatel122/AirQualityDashboard/internal/alerts/domain"
	"github.com/Ppatel122/AirQualityDashboard/internal/geo"
	"github.com/Ppatel122/AirQualityDashboard/internal/observability/metrics"
	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

// Event types emitted on threshold transitions.
const (
	EventCrossed = "crossed"
	EventDropped = "dropped"
)

// AlertEvent describes one threshold transition of one alert.
type AlertEvent struct {
	Type          string         `json:"type"`
	Alert         alerts.Alert   `json:"alert"`
	TriggerSource sensors.Source `json:"trigger_source,omitempty"`
	TriggerID     string         `json:"trigger_id,omitempty"`
	TriggerName   string         `json:"trigger_name,omitempty"`
	TriggerValue  int            `json:"trigger_value"`
}

// AlertNotifier dispatches a notification for a transition. A returned error
// is logged by the evaluator but never reverts the persisted flip.
type AlertNotifier interface {
	Notify(ctx context.Context, event AlertEvent) error
}

// AlertStore persists hysteresis flips.
type AlertStore interface {
	SetAboveThreshold(ctx context.Context, id string, above bool, at time.Time) error
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Service evaluates registered alerts against the current sensor snapshot.
// Each alert is a two-state machine (below/above threshold) with
// edge-triggered transitions: re-crossing the same side never re-fires.
type Service struct {
	store               AlertStore
	notifier            AlertNotifier
	clock               Clock
	logger              *log.Logger
	nearestMicrosensors int
	nearestStations     int
}

// ServiceOption customizes the evaluator.
type ServiceOption func(*Service)

// WithNotifier assigns a notifier.
func WithNotifier(notifier AlertNotifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithNearestMicrosensors overrides how many microsensors are consulted.
func WithNearestMicrosensors(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.nearestMicrosensors = n
		}
	}
}

// WithNearestStations overrides how many stations are consulted.
func WithNearestStations(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.nearestStations = n
		}
	}
}

// NewService constructs an evaluator.
func NewService(store AlertStore, logger *log.Logger, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("alert evaluator: nil store")
	}
	if logger == nil {
		return nil, errors.New("alert evaluator: nil logger")
	}
	service := &Service{
		store:               store,
		clock:               systemClock{},
		logger:              logger,
		nearestMicrosensors: 3,
		nearestStations:     1,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// EvaluateAll evaluates every alert against the sensor snapshot. Alerts are
// independent: an alert deleted mid-batch is logged and skipped without
// affecting the rest. Context cancellation is checked between alerts so a
// shutdown can stop a long batch; per-alert flips are already atomic.
func (s *Service) EvaluateAll(ctx context.Context, alertList []alerts.Alert, micro []sensors.Microsensor, stations []sensors.StationReading) error {
	if s == nil {
		return errors.New("alert evaluator: nil service")
	}
	for _, alert := range alertList {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.evaluateAlert(ctx, alert, micro, stations); err != nil {
			if errors.Is(err, alerts.ErrNotFound) {
				s.logger.Printf("alert %s vanished mid-batch, skipping", alert.ID)
				continue
			}
			return err
		}
	}
	return nil
}

// evaluateAlert runs the threshold policy for one alert. The in-memory
// `above` variable is updated immediately after each flip, so at most one
// notification fires per direction per tick even when both sensor branches
// qualify in the same pass.
func (s *Service) evaluateAlert(ctx context.Context, alert alerts.Alert, micro []sensors.Microsensor, stations []sensors.StationReading) error {
	nearestMicro := geo.Nearest(alert.Latitude, alert.Longitude, micro, s.nearestMicrosensors)
	nearestStations := geo.Nearest(alert.Latitude, alert.Longitude, stations, s.nearestStations)

	above := alert.IsAboveThreshold
	belowCount := 0

	// Microsensor branch: ascending distance, first crossing wins and ends
	// the scan for this tick.
	for _, candidate := range nearestMicro {
		sensor := candidate.Item
		if !above && sensor.LocalIndex >= alert.Threshold {
			event := AlertEvent{
				Type:          EventCrossed,
				Alert:         alert,
				TriggerSource: sensors.SourceMicrosensor,
				TriggerID:     sensor.ID,
				TriggerValue:  sensor.LocalIndex,
			}
			if err := s.transition(ctx, alert, true, event); err != nil {
				return err
			}
			above = true
			break
		}
		if above && sensor.LocalIndex < alert.Threshold {
			belowCount++
		}
	}

	// Station branch: evaluated independently against the single nearest
	// station, but gated on the already-updated in-memory state.
	if len(nearestStations) > 0 {
		station := nearestStations[0].Item
		rounded := int(math.Round(station.NationalIndex))
		if !above && rounded >= alert.Threshold {
			event := AlertEvent{
				Type:          EventCrossed,
				Alert:         alert,
				TriggerSource: sensors.SourceStation,
				TriggerID:     station.ID,
				TriggerName:   station.Name,
				TriggerValue:  rounded,
			}
			if err := s.transition(ctx, alert, true, event); err != nil {
				return err
			}
			above = true
		} else if above && rounded < alert.Threshold {
			belowCount++
		}
	}

	// Consensus drop: every consulted sensor of both branches must agree.
	total := len(nearestMicro) + len(nearestStations)
	if above && total > 0 && belowCount == total {
		event := AlertEvent{
			Type:         EventDropped,
			Alert:        alert,
			TriggerValue: alert.Threshold,
		}
		if err := s.transition(ctx, alert, false, event); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) transition(ctx context.Context, alert alerts.Alert, above bool, event AlertEvent) error {
	direction := "down"
	if above {
		direction = "up"
	}
	metrics.IncAlertTransition(direction)
	s.logger.Printf("alert %q (%s): threshold %s, trigger=%s value=%d",
		alert.Name, alert.ID, event.Type, event.TriggerID, event.TriggerValue)

	// The notification and the persisted flip are not transactionally
	// linked: a failed send is logged and the flip still lands.
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, event); err != nil {
			metrics.IncNotification("error")
			s.logger.Printf("alert %s: notification failed: %v", alert.ID, err)
		} else {
			metrics.IncNotification("success")
		}
	}
	return s.store.SetAboveThreshold(ctx, alert.ID, above, s.clock.Now().UTC())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
