package purpleair

import (
	"fmt"
	"strconv"
	"time"

	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

// Field names with evaluation semantics. Remaining declared fields are
// carried through in Raw for downstream display.
const (
	fieldSensorIndex = "sensor_index"
	fieldLatitude    = "latitude"
	fieldLongitude   = "longitude"
	fieldPM25Avg60   = "pm2.5_60minute"
)

// Normalize converts a columnar payload into microsensor records. Rows
// missing the sensor index, coordinates or the PM2.5 average are skipped;
// the count of skipped rows is returned alongside the good records.
func Normalize(payload Payload) ([]sensors.Microsensor, int, error) {
	if len(payload.Fields) == 0 {
		return nil, 0, fmt.Errorf("%w: no fields declared", sensors.ErrMalformedReading)
	}

	indices := make(map[string]int, len(payload.Fields))
	for i, field := range payload.Fields {
		indices[field] = i
	}
	for _, required := range []string{fieldSensorIndex, fieldLatitude, fieldLongitude, fieldPM25Avg60} {
		if _, ok := indices[required]; !ok {
			return nil, 0, fmt.Errorf("%w: field %q not declared", sensors.ErrMalformedReading, required)
		}
	}

	observedAt := time.Unix(payload.DataTimeStamp, 0).UTC()
	readings := make([]sensors.Microsensor, 0, len(payload.Data))
	skipped := 0

	for _, row := range payload.Data {
		reading, ok := normalizeRow(payload.Fields, indices, row, observedAt)
		if !ok {
			skipped++
			continue
		}
		readings = append(readings, reading)
	}
	return readings, skipped, nil
}

func normalizeRow(fields []string, indices map[string]int, row []any, observedAt time.Time) (sensors.Microsensor, bool) {
	id, ok := cellNumber(row, indices[fieldSensorIndex])
	if !ok {
		return sensors.Microsensor{}, false
	}
	lat, ok := cellNumber(row, indices[fieldLatitude])
	if !ok {
		return sensors.Microsensor{}, false
	}
	lon, ok := cellNumber(row, indices[fieldLongitude])
	if !ok {
		return sensors.Microsensor{}, false
	}
	pm25, ok := cellNumber(row, indices[fieldPM25Avg60])
	if !ok {
		return sensors.Microsensor{}, false
	}

	reading := sensors.Microsensor{
		ID:         strconv.FormatFloat(id, 'f', -1, 64),
		Latitude:   lat,
		Longitude:  lon,
		LocalIndex: sensors.LocalIndex(pm25),
		PM25Avg60:  pm25,
		ObservedAt: observedAt,
		Raw:        make(map[string]float64, len(fields)),
	}
	for _, field := range fields {
		if value, ok := cellNumber(row, indices[field]); ok {
			reading.Raw[field] = value
		}
	}
	if err := reading.Validate(); err != nil {
		return sensors.Microsensor{}, false
	}
	return reading, true
}

func cellNumber(row []any, index int) (float64, bool) {
	if index < 0 || index >= len(row) {
		return 0, false
	}
	value, ok := row[index].(float64)
	return value, ok
}
