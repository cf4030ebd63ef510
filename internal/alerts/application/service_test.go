package application

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	alerts "github.com/Ppatel122/AirQualityDashboard/internal/alerts/domain"
	"github.com/Ppatel122/AirQualityDashboard/internal/alerts/infrastructure/memory"
	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []AlertEvent
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, event AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingNotifier) Events() []AlertEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AlertEvent(nil), r.events...)
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func microsensor(id string, lat, lon float64, localIndex int) sensors.Microsensor {
	return sensors.Microsensor{
		ID:         id,
		Latitude:   lat,
		Longitude:  lon,
		LocalIndex: localIndex,
		ObservedAt: time.Now().UTC(),
	}
}

func station(id, name string, lat, lon, index float64) sensors.StationReading {
	return sensors.StationReading{
		ID:            id,
		Name:          name,
		Latitude:      lat,
		Longitude:     lon,
		NationalIndex: index,
		ObservedAt:    time.Now().UTC(),
	}
}

func testAlert(threshold int, above bool) alerts.Alert {
	return alerts.Alert{
		ID:               "alert-1",
		OwnerEmail:       "user@example.com",
		Name:             "Home",
		Latitude:         53.5,
		Longitude:        -113.5,
		Threshold:        threshold,
		IsAboveThreshold: above,
	}
}

func newTestService(t *testing.T, repo *memory.AlertRepository, notifier AlertNotifier) *Service {
	t.Helper()
	service, err := NewService(repo, testLogger(), WithNotifier(notifier))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestUpwardTransitionFromMicrosensor(t *testing.T) {
	alert := testAlert(5, false)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	micro := []sensors.Microsensor{
		microsensor("far", 54.0, -113.5, 9),
		microsensor("near", 53.51, -113.5, 6),
	}

	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, micro, nil); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	events := notifier.Events()
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(events))
	}
	if events[0].Type != EventCrossed {
		t.Fatalf("event type = %s, want crossed", events[0].Type)
	}
	if events[0].TriggerID != "near" {
		t.Fatalf("trigger = %s, want the nearest qualifying sensor", events[0].TriggerID)
	}
	if events[0].TriggerValue != 6 {
		t.Fatalf("trigger value = %d, want 6", events[0].TriggerValue)
	}
	stored, _ := repo.Get(alert.ID)
	if !stored.IsAboveThreshold {
		t.Fatal("flip not persisted")
	}
}

func TestUpwardTransitionIdempotentOnceAbove(t *testing.T) {
	alert := testAlert(5, false)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	micro := []sensors.Microsensor{microsensor("s1", 53.5, -113.5, 6)}

	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, micro, nil); err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	// Re-run with the persisted above state: same inputs must not re-fire.
	stored, _ := repo.Get(alert.ID)
	if err := service.EvaluateAll(context.Background(), []alerts.Alert{stored}, micro, nil); err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if got := len(notifier.Events()); got != 1 {
		t.Fatalf("expected 1 notification across both ticks, got %d", got)
	}
}

func TestUpwardTransitionFromStation(t *testing.T) {
	alert := testAlert(5, false)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	stations := []sensors.StationReading{
		station("st-1", "Downtown", 53.5, -113.5, 4.6), // rounds to 5
	}

	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, nil, stations); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	events := notifier.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(events))
	}
	if events[0].TriggerSource != sensors.SourceStation || events[0].TriggerName != "Downtown" {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	if events[0].TriggerValue != 5 {
		t.Fatalf("trigger value = %d, want rounded 5", events[0].TriggerValue)
	}
}

func TestStationRoundingBelowThreshold(t *testing.T) {
	alert := testAlert(5, false)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	stations := []sensors.StationReading{
		station("st-1", "Downtown", 53.5, -113.5, 4.4), // rounds to 4
	}
	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, nil, stations); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(notifier.Events()) != 0 {
		t.Fatal("expected no notification for index rounding below threshold")
	}
}

func TestSingleUpwardFlipWhenBothBranchesQualify(t *testing.T) {
	alert := testAlert(5, false)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	micro := []sensors.Microsensor{microsensor("s1", 53.5, -113.5, 7)}
	stations := []sensors.StationReading{station("st-1", "Downtown", 53.5, -113.5, 8)}

	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, micro, stations); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	events := notifier.Events()
	if len(events) != 1 {
		t.Fatalf("expected a single upward notification, got %d", len(events))
	}
	if events[0].TriggerSource != sensors.SourceMicrosensor {
		t.Fatalf("microsensor branch should win, got %s", events[0].TriggerSource)
	}
	stored, _ := repo.Get(alert.ID)
	if !stored.IsAboveThreshold {
		t.Fatal("flip not persisted")
	}
}

func TestDownwardTransitionNeedsFullConsensus(t *testing.T) {
	alert := testAlert(5, true)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	micro := []sensors.Microsensor{
		microsensor("s1", 53.5, -113.5, 2),
		microsensor("s2", 53.51, -113.5, 3),
		microsensor("s3", 53.52, -113.5, 4),
	}
	stations := []sensors.StationReading{station("st-1", "Downtown", 53.5, -113.5, 3.2)}

	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, micro, stations); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	events := notifier.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 dropped notification, got %d", len(events))
	}
	if events[0].Type != EventDropped {
		t.Fatalf("event type = %s, want dropped", events[0].Type)
	}
	if events[0].TriggerValue != 5 {
		t.Fatalf("dropped event should carry the threshold, got %d", events[0].TriggerValue)
	}
	stored, _ := repo.Get(alert.ID)
	if stored.IsAboveThreshold {
		t.Fatal("downward flip not persisted")
	}
}

func TestNoDownwardTransitionWithPartialConsensus(t *testing.T) {
	alert := testAlert(5, true)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	// Only 2 of 3 microsensors below threshold.
	micro := []sensors.Microsensor{
		microsensor("s1", 53.5, -113.5, 2),
		microsensor("s2", 53.51, -113.5, 3),
		microsensor("s3", 53.52, -113.5, 7),
	}
	stations := []sensors.StationReading{station("st-1", "Downtown", 53.5, -113.5, 3.2)}

	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, micro, stations); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(notifier.Events()) != 0 {
		t.Fatal("expected no transition with partial consensus")
	}
	stored, _ := repo.Get(alert.ID)
	if !stored.IsAboveThreshold {
		t.Fatal("alert should remain above threshold")
	}
}

func TestStationAboveBlocksDownwardTransition(t *testing.T) {
	alert := testAlert(5, true)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	micro := []sensors.Microsensor{
		microsensor("s1", 53.5, -113.5, 1),
		microsensor("s2", 53.51, -113.5, 1),
		microsensor("s3", 53.52, -113.5, 1),
	}
	stations := []sensors.StationReading{station("st-1", "Downtown", 53.5, -113.5, 8)}

	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, micro, stations); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(notifier.Events()) != 0 {
		t.Fatal("station still above threshold, no transition expected")
	}
}

func TestMissingBranchDataIsSkipped(t *testing.T) {
	alert := testAlert(5, false)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	// No sensors of either type at all.
	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, nil, nil); err != nil {
		t.Fatalf("evaluate with no sensors: %v", err)
	}
	if len(notifier.Events()) != 0 {
		t.Fatal("no sensors should mean no transitions")
	}
}

func TestDeletedAlertMidBatchDoesNotAffectOthers(t *testing.T) {
	deleted := testAlert(5, false)
	deleted.ID = "alert-deleted"
	survivor := testAlert(5, false)
	survivor.ID = "alert-survivor"

	// Only the survivor exists in the store; the other vanished after the
	// batch snapshot was taken.
	repo := memory.NewAlertRepository(survivor)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	micro := []sensors.Microsensor{microsensor("s1", 53.5, -113.5, 9)}

	if err := service.EvaluateAll(context.Background(), []alerts.Alert{deleted, survivor}, micro, nil); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	stored, _ := repo.Get(survivor.ID)
	if !stored.IsAboveThreshold {
		t.Fatal("survivor alert should still have been evaluated and flipped")
	}
}

func TestNotificationFailureDoesNotRevertFlip(t *testing.T) {
	alert := testAlert(5, false)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{err: context.DeadlineExceeded}
	service := newTestService(t, repo, notifier)

	micro := []sensors.Microsensor{microsensor("s1", 53.5, -113.5, 9)}

	if err := service.EvaluateAll(context.Background(), []alerts.Alert{alert}, micro, nil); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	stored, _ := repo.Get(alert.ID)
	if !stored.IsAboveThreshold {
		t.Fatal("flip must persist even when the notification fails")
	}
}

func TestEvaluateAllStopsOnCancelledContext(t *testing.T) {
	alert := testAlert(5, false)
	repo := memory.NewAlertRepository(alert)
	notifier := &recordingNotifier{}
	service := newTestService(t, repo, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := service.EvaluateAll(ctx, []alerts.Alert{alert}, nil, nil)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(notifier.Events()) != 0 {
		t.Fatal("no evaluation should happen after cancellation")
	}
}
