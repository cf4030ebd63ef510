package notify

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	alertapp "github.com/Ppatel122/AirQualityDashboard/internal/alerts/application"
	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

const (
	subjectCrossed = "Alert '%s': Threshold Crossed"
	subjectDropped = "Alert '%s': Threshold Dropped"

	microsensorCrossedBody = `PurpleAir sensor {{.TriggerID}} crossed above threshold with AQHI+ of {{.TriggerValue}}.`
	stationCrossedBody     = `Agency station '{{.TriggerName}}' crossed above threshold with AQHI of {{.TriggerValue}}.`
	droppedBody            = `All sensors dropped below AQHI/AQHI+ threshold value of {{.TriggerValue}}.`
)

// Templates renders notification subjects and bodies for transition events.
type Templates struct {
	microsensorCrossed *template.Template
	stationCrossed     *template.Template
	dropped            *template.Template
}

// NewTemplates parses the notification templates.
func NewTemplates() (*Templates, error) {
	micro, err := template.New("microsensor-crossed").Parse(microsensorCrossedBody)
	if err != nil {
		return nil, err
	}
	station, err := template.New("station-crossed").Parse(stationCrossedBody)
	if err != nil {
		return nil, err
	}
	dropped, err := template.New("dropped").Parse(droppedBody)
	if err != nil {
		return nil, err
	}
	return &Templates{
		microsensorCrossed: micro,
		stationCrossed:     station,
		dropped:            dropped,
	}, nil
}

// Render produces the subject and body for a transition event.
func (t *Templates) Render(event alertapp.AlertEvent) (string, string, error) {
	if t == nil {
		return "", "", errors.New("notify templates: nil")
	}
	var subject string
	var tpl *template.Template
	switch event.Type {
	case alertapp.EventCrossed:
		subject = fmt.Sprintf(subjectCrossed, event.Alert.Name)
		if event.TriggerSource == sensors.SourceStation {
			tpl = t.stationCrossed
		} else {
			tpl = t.microsensorCrossed
		}
	case alertapp.EventDropped:
		subject = fmt.Sprintf(subjectDropped, event.Alert.Name)
		tpl = t.dropped
	default:
		return "", "", fmt.Errorf("notify templates: unknown event type %q", event.Type)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, event); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
