package domain

import (
	"context"
	"log/slog"
)

// LocateWithGeocoding fills in coordinates for a record that has none by
// forward geocoding its city and state. It reports false when the record
// still cannot be placed on the map (nil geocoder, error, or no match).
func LocateWithGeocoding(ctx context.Context, rec CityRecord, geocoder Geocoder, logger *slog.Logger) (CityRecord, bool) {
	if geocoder == nil {
		return rec, false
	}

	result, err := geocoder.ForwardGeocode(ctx, rec.City, rec.State)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"city", rec.City,
			"state", rec.State,
			"error", err,
		)
		return rec, false
	}
	if result.Lat == 0 && result.Lon == 0 {
		logger.Warn("forward geocoding found no match", "city", rec.City, "state", rec.State)
		return rec, false
	}

	rec.Geo = Geo{Lat: result.Lat, Lon: result.Lon}
	rec.GeoSource = "forward"
	return rec, true
}
