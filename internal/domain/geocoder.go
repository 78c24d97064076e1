package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves a city and state to coordinates.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, city, state string) (GeocodingResult, error)
}
