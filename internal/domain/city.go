package domain

import (
	"encoding/json"
	"time"
)

// Dataset keys as they appear in the JSON document.
const (
	KeyCity      = "CITY"
	KeyState     = "STATE"
	KeyLatitude  = "LATITUDE"
	KeyLongitude = "LONGITUDE"

	KeyAvgScoreMultifamily = "AVG_SCORE_MULTIFAMILY"
	KeyAvgScorePublic      = "AVG_SCORE_PUBLIC"
	KeyAvgSpread           = "AVG_SPREAD"
	KeyAvgFatalities       = "AVG_FATALITIES"
	KeyAvgInjuries         = "AVG_INJURIES"
	KeyAvgMoneyLost        = "AVG_MONEY_LOST"
	KeyAvgAlarms           = "AVG_ALARMS"
	KeyTotalIncidentsAdj   = "TOTAL_INCIDENT_COUNT_ADJ"
	KeyCookingFiresAdj     = "COUNT_113_ADJ"
	KeyVehicleFiresAdj     = "COUNT_131_ADJ"
	KeyTrashFiresAdj       = "COUNT_151_ADJ"
	KeyBrushFiresAdj       = "COUNT_142_ADJ"
	KeyPopulation          = "POPULATION"
	KeySupport             = "SUPPORT"

	percentileSuffix = "_PERCENTILE"
)

// RawCityRecord is one element of the dataset array exactly as it is
// serialized. Pointer fields distinguish absent or null values from zero.
type RawCityRecord struct {
	City       *string      `json:"CITY"`
	State      *string      `json:"STATE"`
	Lat        *float64     `json:"LATITUDE"`
	Lon        *float64     `json:"LONGITUDE"`
	Population *json.Number `json:"POPULATION"`

	AvgScoreMultifamily     *float64     `json:"AVG_SCORE_MULTIFAMILY"`
	AvgScorePublic          *float64     `json:"AVG_SCORE_PUBLIC"`
	AvgSpread               *float64     `json:"AVG_SPREAD"`
	AvgFatalities           *float64     `json:"AVG_FATALITIES"`
	AvgInjuries             *float64     `json:"AVG_INJURIES"`
	AvgMoneyLost            *float64     `json:"AVG_MONEY_LOST"`
	AvgAlarms               *float64     `json:"AVG_ALARMS"`
	TotalIncidentsPerCapita *float64     `json:"TOTAL_INCIDENT_COUNT_ADJ"`
	CookingFiresPerCapita   *float64     `json:"COUNT_113_ADJ"`
	VehicleFiresPerCapita   *float64     `json:"COUNT_131_ADJ"`
	TrashFiresPerCapita     *float64     `json:"COUNT_151_ADJ"`
	BrushFiresPerCapita     *float64     `json:"COUNT_142_ADJ"`
	Support                 *json.Number `json:"SUPPORT"`

	// Percentiles collects every "<KEY>_PERCENTILE" entry. Filled by
	// ParseDataset since the key set is open.
	Percentiles map[string]float64 `json:"-"`

	// DecodeErr is set when the element could not be decoded into this
	// shape. The fields decoded before the failure are kept for labeling.
	DecodeErr error `json:"-"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CityRecord is a validated dataset row. Statistics stay nil when absent.
type CityRecord struct {
	ID         int    `json:"id"`
	City       string `json:"city"`
	State      string `json:"state"`
	Geo        Geo    `json:"geo"`
	Population int64  `json:"population"`

	AvgScoreMultifamily     *float64 `json:"avg_score_multifamily"`
	AvgScorePublic          *float64 `json:"avg_score_public"`
	AvgSpread               *float64 `json:"avg_spread"`
	AvgFatalities           *float64 `json:"avg_fatalities"`
	AvgInjuries             *float64 `json:"avg_injuries"`
	AvgMoneyLost            *float64 `json:"avg_money_lost"`
	AvgAlarms               *float64 `json:"avg_alarms"`
	TotalIncidentsPerCapita *float64 `json:"total_incidents_per_capita"`
	CookingFiresPerCapita   *float64 `json:"cooking_fires_per_capita"`
	VehicleFiresPerCapita   *float64 `json:"vehicle_fires_per_capita"`
	TrashFiresPerCapita     *float64 `json:"trash_fires_per_capita"`
	BrushFiresPerCapita     *float64 `json:"brush_fires_per_capita"`
	TotalIncidents          *int64   `json:"total_incidents"`

	Percentiles map[string]float64 `json:"percentiles,omitempty"`

	// GeoSource is "original" or "forward" (geocoded from city/state).
	GeoSource string `json:"geo_source,omitempty"`
}

// Label returns "City, ST".
func (r CityRecord) Label() string {
	return r.City + ", " + r.State
}

// Percentile returns the percentile rank for a statistic key, or nil.
func (r CityRecord) Percentile(key string) *float64 {
	v, ok := r.Percentiles[key]
	if !ok {
		return nil
	}
	return &v
}

// ActivationEvent records that a marker's sidebar panel was opened.
type ActivationEvent struct {
	ID          string    `json:"id"`
	MarkerID    int       `json:"marker_id"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ActivatedAt time.Time `json:"activated_at"`
}

// NewActivationEvent stamps an activation of the given record with the
// package clock.
func NewActivationEvent(id string, r CityRecord) ActivationEvent {
	return ActivationEvent{
		ID:          id,
		MarkerID:    r.ID,
		City:        r.City,
		State:       r.State,
		ActivatedAt: clock.Now().UTC(),
	}
}
