package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	alertapp "github.com/Ppatel122/AirQualityDashboard/internal/alerts/application"
)

// ErrSendFailed indicates the messaging provider rejected a notification.
var ErrSendFailed = errors.New("notify: send failed")

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// EmailNotifier renders transition events and mails them to the alert owner.
type EmailNotifier struct {
	mailer    Mailer
	templates *Templates
}

// NewEmailNotifier constructs an email notifier.
func NewEmailNotifier(mailer Mailer, templates *Templates) (*EmailNotifier, error) {
	if mailer == nil {
		return nil, errors.New("email notifier: nil mailer")
	}
	if templates == nil {
		defaults, err := NewTemplates()
		if err != nil {
			return nil, err
		}
		templates = defaults
	}
	return &EmailNotifier{mailer: mailer, templates: templates}, nil
}

// Notify implements application.AlertNotifier.
func (n *EmailNotifier) Notify(ctx context.Context, event alertapp.AlertEvent) error {
	if n == nil || n.mailer == nil {
		return errors.New("email notifier: nil mailer")
	}
	subject, body, err := n.templates.Render(event)
	if err != nil {
		return fmt.Errorf("%w: render: %v", ErrSendFailed, err)
	}
	return n.mailer.Send(ctx, Message{
		To:      event.Alert.OwnerEmail,
		Subject: subject,
		Body:    body,
	})
}

// LogNotifier writes transition events to the service log.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier constructs a log notifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements application.AlertNotifier.
func (n *LogNotifier) Notify(_ context.Context, event alertapp.AlertEvent) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Printf("alert %q: %s (trigger=%s value=%d recipient=%s)",
		event.Alert.Name, event.Type, event.TriggerID, event.TriggerValue, event.Alert.OwnerEmail)
	return nil
}
