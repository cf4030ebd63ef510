package memory

import (
	"context"
	"sync"
	"time"

	alerts "github.com/Ppatel122/AirQualityDashboard/internal/alerts/domain"
)

// AlertRepository is an in-memory alert store for demo/testing.
type AlertRepository struct {
	mu   sync.RWMutex
	data map[string]alerts.Alert
}

// NewAlertRepository constructs a repository.
func NewAlertRepository(seed ...alerts.Alert) *AlertRepository {
	repo := &AlertRepository{data: make(map[string]alerts.Alert)}
	for _, alert := range seed {
		repo.data[alert.ID] = alert
	}
	return repo
}

// Put inserts or replaces an alert.
func (r *AlertRepository) Put(alert alerts.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[alert.ID] = alert
}

// Delete removes an alert, simulating an unsubscription.
func (r *AlertRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
}

// Get returns an alert by id.
func (r *AlertRepository) Get(id string) (alerts.Alert, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	alert, ok := r.data[id]
	return alert, ok
}

// ListAll returns every stored alert.
func (r *AlertRepository) ListAll(ctx context.Context) ([]alerts.Alert, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]alerts.Alert, 0, len(r.data))
	for _, alert := range r.data {
		result = append(result, alert)
	}
	return result, nil
}

// SetAboveThreshold persists a hysteresis flip.
func (r *AlertRepository) SetAboveThreshold(ctx context.Context, id string, above bool, at time.Time) error {
	_ = ctx
	_ = at
	r.mu.Lock()
	defer r.mu.Unlock()
	alert, ok := r.data[id]
	if !ok {
		return alerts.ErrNotFound
	}
	alert.IsAboveThreshold = above
	r.data[id] = alert
	return nil
}
