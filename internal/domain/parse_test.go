package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renoJSON = `[{"CITY":"Reno","STATE":"NV","LATITUDE":39.5,"LONGITUDE":-119.8,"POPULATION":250000,
"AVG_SCORE_MULTIFAMILY":87.25,"AVG_SCORE_PUBLIC":null,"AVG_SPREAD":0.021,"AVG_FATALITIES":0.0123,
"AVG_INJURIES":0.04,"AVG_MONEY_LOST":1234.5,"AVG_ALARMS":1.2,"TOTAL_INCIDENT_COUNT_ADJ":0.0031,
"COUNT_113_ADJ":0.001,"COUNT_131_ADJ":0.0004,"COUNT_151_ADJ":0.0007,"COUNT_142_ADJ":0.0002,
"SUPPORT":7800,"AVG_FATALITIES_PERCENTILE":0.873,"AVG_INJURIES_PERCENTILE":null,"EXTRA":"ignored"}]`

func TestParseDataset(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		raws, err := ParseDataset([]byte(renoJSON))
		require.NoError(t, err)
		require.Len(t, raws, 1)

		raw := raws[0]
		assert.Equal(t, "Reno", *raw.City)
		assert.Equal(t, 39.5, *raw.Lat)
		assert.Nil(t, raw.AvgScorePublic)
		assert.Equal(t, map[string]float64{KeyAvgFatalities: 0.873}, raw.Percentiles)
	})

	t.Run("empty array", func(t *testing.T) {
		raws, err := ParseDataset([]byte(`[]`))
		require.NoError(t, err)
		assert.Empty(t, raws)
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := ParseDataset([]byte(`{"CITY":"Reno"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse dataset")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseDataset([]byte(`[{invalid`))
		require.Error(t, err)
	})

	t.Run("wrongly typed field keeps the element", func(t *testing.T) {
		raws, err := ParseDataset([]byte(`[{"CITY":"Reno","STATE":"NV","LATITUDE":"north"},{"CITY":"Elko","STATE":"NV"}]`))
		require.NoError(t, err)
		require.Len(t, raws, 2)

		require.Error(t, raws[0].DecodeErr)
		assert.Contains(t, raws[0].DecodeErr.Error(), "element 0")
		assert.Equal(t, "Reno", *raws[0].City)
		assert.NoError(t, raws[1].DecodeErr)
	})

	t.Run("element that is not an object", func(t *testing.T) {
		raws, err := ParseDataset([]byte(`[42]`))
		require.NoError(t, err)
		require.Len(t, raws, 1)
		assert.Error(t, raws[0].DecodeErr)
	})
}

func TestParseCityRecord(t *testing.T) {
	raws, err := ParseDataset([]byte(renoJSON))
	require.NoError(t, err)

	t.Run("malformed", func(t *testing.T) {
		raws, err := ParseDataset([]byte(`[{"CITY":"Elko","STATE":"NV","LATITUDE":"n/a","LONGITUDE":-115.7,"POPULATION":20000}]`))
		require.NoError(t, err)
		_, err = ParseCityRecord(0, raws[0])
		require.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("valid", func(t *testing.T) {
		rec, err := ParseCityRecord(3, raws[0])
		require.NoError(t, err)
		assert.Equal(t, 3, rec.ID)
		assert.Equal(t, "Reno, NV", rec.Label())
		assert.Equal(t, Geo{Lat: 39.5, Lon: -119.8}, rec.Geo)
		assert.Equal(t, int64(250000), rec.Population)
		require.NotNil(t, rec.TotalIncidents)
		assert.Equal(t, int64(7800), *rec.TotalIncidents)
		assert.Equal(t, "original", rec.GeoSource)
		require.NotNil(t, rec.Percentile(KeyAvgFatalities))
		assert.Nil(t, rec.Percentile(KeyAvgInjuries))
	})

	t.Run("float population", func(t *testing.T) {
		raws, err := ParseDataset([]byte(`[{"CITY":"Elko","STATE":"NV","LATITUDE":40.8,"LONGITUDE":-115.7,"POPULATION":20000.0}]`))
		require.NoError(t, err)
		rec, err := ParseCityRecord(0, raws[0])
		require.NoError(t, err)
		assert.Equal(t, int64(20000), rec.Population)
	})

	t.Run("missing identity", func(t *testing.T) {
		raws, err := ParseDataset([]byte(`[{"CITY":" ","STATE":"NV","LATITUDE":40.8,"LONGITUDE":-115.7,"POPULATION":1}]`))
		require.NoError(t, err)
		_, err = ParseCityRecord(0, raws[0])
		assert.ErrorIs(t, err, ErrMissingIdentity)
	})

	t.Run("fractional population", func(t *testing.T) {
		raws, err := ParseDataset([]byte(`[{"CITY":"Elko","STATE":"NV","LATITUDE":40.8,"LONGITUDE":-115.7,"POPULATION":1.5}]`))
		require.NoError(t, err)
		_, err = ParseCityRecord(0, raws[0])
		assert.ErrorIs(t, err, ErrMissingPopulation)
	})

	t.Run("missing coordinates keeps the rest", func(t *testing.T) {
		raws, err := ParseDataset([]byte(`[{"CITY":"Elko","STATE":"NV","POPULATION":20000,"AVG_ALARMS":1.1}]`))
		require.NoError(t, err)
		rec, err := ParseCityRecord(0, raws[0])
		require.ErrorIs(t, err, ErrMissingCoordinates)
		assert.Equal(t, "Elko", rec.City)
		assert.Equal(t, int64(20000), rec.Population)
		require.NotNil(t, rec.AvgAlarms)
		assert.Empty(t, rec.GeoSource)
	})
}
