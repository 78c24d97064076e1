package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrMissingIdentity is returned for records without CITY or STATE.
	ErrMissingIdentity = errors.New("missing city/state identity")
	// ErrMissingPopulation is returned for records without a usable POPULATION.
	ErrMissingPopulation = errors.New("missing population")
	// ErrMissingCoordinates is returned for records without LATITUDE/LONGITUDE.
	ErrMissingCoordinates = errors.New("missing coordinates")
	// ErrMalformedRecord is returned for elements whose fields have the wrong type.
	ErrMalformedRecord = errors.New("malformed record")
)

// ParseDataset decodes the dataset document: a JSON array of city objects.
// Percentile keys are collected into RawCityRecord.Percentiles.
//
// Only a document that is not a JSON array fails. An element that does not
// decode is returned with DecodeErr set so its position is kept.
func ParseDataset(data []byte) ([]RawCityRecord, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	records := make([]RawCityRecord, 0, len(elems))
	for i, elem := range elems {
		rec, err := parseRawCityRecord(elem)
		if err != nil {
			rec.DecodeErr = fmt.Errorf("element %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRawCityRecord(elem json.RawMessage) (RawCityRecord, error) {
	var rec RawCityRecord
	if err := json.Unmarshal(elem, &rec); err != nil {
		// A type mismatch still fills the other fields; keep them.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return rec, err
		}
		return RawCityRecord{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil {
		return RawCityRecord{}, err
	}
	for key, value := range fields {
		if !strings.HasSuffix(key, percentileSuffix) {
			continue
		}
		var p *float64
		if err := json.Unmarshal(value, &p); err != nil || p == nil {
			continue
		}
		if rec.Percentiles == nil {
			rec.Percentiles = make(map[string]float64)
		}
		rec.Percentiles[strings.TrimSuffix(key, percentileSuffix)] = *p
	}
	return rec, nil
}

// ParseCityRecord validates a raw record and assigns it the given ID.
//
// When only the coordinates are missing, the otherwise complete record is
// returned together with ErrMissingCoordinates so the caller can geocode it.
func ParseCityRecord(id int, raw RawCityRecord) (CityRecord, error) {
	if raw.DecodeErr != nil {
		return CityRecord{}, fmt.Errorf("%w: %w", ErrMalformedRecord, raw.DecodeErr)
	}
	city := trimmed(raw.City)
	state := trimmed(raw.State)
	if city == "" || state == "" {
		return CityRecord{}, ErrMissingIdentity
	}

	population, ok := parseCount(raw.Population)
	if !ok || population < 0 {
		return CityRecord{}, fmt.Errorf("%s, %s: %w", city, state, ErrMissingPopulation)
	}

	rec := CityRecord{
		ID:         id,
		City:       city,
		State:      state,
		Population: population,

		AvgScoreMultifamily:     raw.AvgScoreMultifamily,
		AvgScorePublic:          raw.AvgScorePublic,
		AvgSpread:               raw.AvgSpread,
		AvgFatalities:           raw.AvgFatalities,
		AvgInjuries:             raw.AvgInjuries,
		AvgMoneyLost:            raw.AvgMoneyLost,
		AvgAlarms:               raw.AvgAlarms,
		TotalIncidentsPerCapita: raw.TotalIncidentsPerCapita,
		CookingFiresPerCapita:   raw.CookingFiresPerCapita,
		VehicleFiresPerCapita:   raw.VehicleFiresPerCapita,
		TrashFiresPerCapita:     raw.TrashFiresPerCapita,
		BrushFiresPerCapita:     raw.BrushFiresPerCapita,
		Percentiles:             raw.Percentiles,
	}
	if support, ok := parseCount(raw.Support); ok {
		rec.TotalIncidents = &support
	}

	if raw.Lat == nil || raw.Lon == nil {
		return rec, fmt.Errorf("%s: %w", rec.Label(), ErrMissingCoordinates)
	}
	rec.Geo = Geo{Lat: *raw.Lat, Lon: *raw.Lon}
	rec.GeoSource = "original"
	return rec, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// parseCount reads an integer count. Integral floats such as 250000.0 are
// accepted since pandas writes nullable integer columns as floats.
func parseCount(n *json.Number) (int64, bool) {
	if n == nil || *n == "" {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		return v, true
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
