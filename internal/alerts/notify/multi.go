package notify

import (
	"context"
	"errors"

	alertapp "github.com/Ppatel122/AirQualityDashboard/internal/alerts/application"
)

// MultiNotifier dispatches transition events to multiple notifiers.
type MultiNotifier struct {
	notifiers []alertapp.AlertNotifier
}

// NewMultiNotifier constructs a MultiNotifier.
func NewMultiNotifier(notifiers ...alertapp.AlertNotifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Notify forwards the event to all notifiers and joins their errors.
func (m *MultiNotifier) Notify(ctx context.Context, event alertapp.AlertEvent) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, notifier := range m.notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
