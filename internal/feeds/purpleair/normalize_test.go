package purpleair

import (
	"errors"
	"testing"
	"time"

	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

func testPayload() Payload {
	return Payload{
		Fields:        []string{"sensor_index", "latitude", "longitude", "pm2.5_60minute", "humidity"},
		DataTimeStamp: 1710000000,
		Data: [][]any{
			{float64(12345), 53.5461, -113.4938, 52.0, 41.0},
			{float64(67), 53.4, -113.6, 0.0, 55.0},
		},
	}
}

func TestNormalize(t *testing.T) {
	readings, skipped, err := Normalize(testPayload())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}

	first := readings[0]
	if first.ID != "12345" {
		t.Fatalf("id = %q, want 12345", first.ID)
	}
	if first.LocalIndex != 6 {
		t.Fatalf("local index = %d, want 6 for pm2.5 52", first.LocalIndex)
	}
	if first.PM25Avg60 != 52.0 {
		t.Fatalf("pm2.5 = %v, want 52", first.PM25Avg60)
	}
	wantAt := time.Unix(1710000000, 0).UTC()
	if !first.ObservedAt.Equal(wantAt) {
		t.Fatalf("observed at = %v, want %v", first.ObservedAt, wantAt)
	}
	if first.Raw["humidity"] != 41.0 {
		t.Fatalf("raw humidity = %v, want 41", first.Raw["humidity"])
	}

	// A zero concentration still lands in the lowest band, never 0.
	if readings[1].LocalIndex != 1 {
		t.Fatalf("local index = %d, want 1 for pm2.5 0", readings[1].LocalIndex)
	}
}

func TestNormalizeSkipsMalformedRows(t *testing.T) {
	payload := testPayload()
	payload.Data = append(payload.Data,
		[]any{nil, 53.5, -113.5, 10.0, 40.0},            // missing sensor index
		[]any{float64(9), 53.5, -113.5, nil, 40.0},      // missing pm2.5
		[]any{float64(10), "n/a", -113.5, 10.0, 40.0},   // non-numeric latitude
		[]any{float64(11), 95.0, -113.5, 10.0, 40.0},    // latitude out of range
		[]any{float64(12), 53.5},                        // short row
	)

	readings, skipped, err := Normalize(payload)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if skipped != 5 {
		t.Fatalf("skipped = %d, want 5", skipped)
	}
	if len(readings) != 2 {
		t.Fatalf("expected 2 surviving readings, got %d", len(readings))
	}
}

func TestNormalizeRejectsMissingDeclaredField(t *testing.T) {
	payload := testPayload()
	payload.Fields = []string{"sensor_index", "latitude", "longitude"}
	if _, _, err := Normalize(payload); !errors.Is(err, sensors.ErrMalformedReading) {
		t.Fatalf("expected ErrMalformedReading, got %v", err)
	}
}
