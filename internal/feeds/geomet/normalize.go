package geomet

import (
	"time"

	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

// Normalize flattens GeoJSON features into station readings. Features missing
// an id, point coordinates or an index value are skipped and counted. The
// fallback time is used when a feature carries no parseable observation time.
func Normalize(collection FeatureCollection, fallback time.Time) ([]sensors.StationReading, int) {
	readings := make([]sensors.StationReading, 0, len(collection.Features))
	skipped := 0

	for _, feature := range collection.Features {
		if feature.ID == "" || len(feature.Geometry.Coordinates) < 2 || feature.Properties.AQHI == nil {
			skipped++
			continue
		}
		observedAt := fallback
		if at, err := time.Parse(time.RFC3339, feature.Properties.ObservationDatetime); err == nil {
			observedAt = at.UTC()
		}
		reading := sensors.StationReading{
			ID:            feature.ID,
			Name:          feature.Properties.LocationNameEn,
			Longitude:     feature.Geometry.Coordinates[0],
			Latitude:      feature.Geometry.Coordinates[1],
			NationalIndex: *feature.Properties.AQHI,
			ObservedAt:    observedAt,
		}
		if err := reading.Validate(); err != nil {
			skipped++
			continue
		}
		readings = append(readings, reading)
	}
	return readings, skipped
}
