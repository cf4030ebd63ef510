package alerts

import (
	"errors"
	"fmt"
)

const (
	// MinThreshold and MaxThreshold bound the registrable index threshold.
	MinThreshold = 1
	MaxThreshold = 10
)

// Alert is a registered location-based air-quality alert. IsAboveThreshold
// is the hysteresis flag: true means a crossed-threshold notification has
// been sent and not yet reversed. The evaluator exclusively owns its
// mutation; registration and unsubscription happen elsewhere.
type Alert struct {
	ID               string  `json:"id"`
	OwnerEmail       string  `json:"username"`
	Name             string  `json:"name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Threshold        int     `json:"threshold"`
	IsAboveThreshold bool    `json:"isabove"`
}

// Validate checks alert invariants.
func (a Alert) Validate() error {
	if a.ID == "" {
		return errors.New("alert: empty id")
	}
	if a.OwnerEmail == "" {
		return errors.New("alert: empty owner email")
	}
	if a.Name == "" {
		return errors.New("alert: empty name")
	}
	if a.Latitude < -90 || a.Latitude > 90 {
		return fmt.Errorf("alert: latitude %v out of range", a.Latitude)
	}
	if a.Longitude < -180 || a.Longitude > 180 {
		return fmt.Errorf("alert: longitude %v out of range", a.Longitude)
	}
	if a.Threshold < MinThreshold || a.Threshold > MaxThreshold {
		return fmt.Errorf("alert: threshold %d out of range [%d,%d]", a.Threshold, MinThreshold, MaxThreshold)
	}
	return nil
}
