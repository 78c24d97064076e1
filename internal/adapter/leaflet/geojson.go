package leaflet

import (
	"fmt"

	"github.com/couchcryptid/fire-incident-map/internal/domain"
	geojson "github.com/paulmach/go.geojson"
)

// FeatureCollection exports records as GeoJSON points. Statistics are
// carried as raw properties under their dataset keys so downstream tools see
// the same names as the source document.
func FeatureCollection(records []domain.CityRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		f := geojson.NewPointFeature([]float64{r.Geo.Lon, r.Geo.Lat})
		f.ID = r.ID
		f.SetProperty("id", r.ID)
		f.SetProperty(domain.KeyCity, r.City)
		f.SetProperty(domain.KeyState, r.State)
		f.SetProperty("geo_source", r.GeoSource)
		for _, s := range domain.Statistics {
			switch {
			case s.Float != nil:
				if v := s.Float(r); v != nil {
					f.SetProperty(s.Key, *v)
				}
			case s.Count != nil:
				if v := s.Count(r); v != nil {
					f.SetProperty(s.Key, *v)
				}
			}
		}
		for key, p := range r.Percentiles {
			f.SetProperty(key+"_PERCENTILE", p)
		}
		fc.AddFeature(f)
	}
	return fc
}

// MarshalFeatureCollection renders records as a GeoJSON document.
func MarshalFeatureCollection(records []domain.CityRecord) ([]byte, error) {
	data, err := FeatureCollection(records).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal geojson: %w", err)
	}
	return data, nil
}
