package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(t *testing.T) CityRecord {
	t.Helper()
	raws, err := ParseDataset([]byte(renoJSON))
	require.NoError(t, err)
	rec, err := ParseCityRecord(0, raws[0])
	require.NoError(t, err)
	return rec
}

func TestRadiusScale(t *testing.T) {
	scales := []RadiusScale{DefaultRadiusScale, {Root: 3.5, Divisor: 4}, {Root: 2, Divisor: 1}}
	populations := []int64{1, 10, 999, 20000, 250000, 8_300_000}

	for _, s := range scales {
		prev := 0.0
		for _, p := range populations {
			r := s.Radius(p)
			assert.Greater(t, r, prev, "radius must grow with population (scale %+v, pop %d)", s, p)
			prev = r

			doubled := s.Radius(2 * p)
			assert.Greater(t, doubled, r)
			assert.Less(t, doubled, 2*r, "doubling population must less-than-double radius (scale %+v, pop %d)", s, p)
		}
	}
}

func TestRadiusScale_Values(t *testing.T) {
	assert.InDelta(t, 10.0, DefaultRadiusScale.Radius(1_000_000), 1e-9)
	assert.InDelta(t, 1.0, DefaultRadiusScale.Radius(1), 1e-9)
	assert.Zero(t, DefaultRadiusScale.Radius(0))
	assert.Zero(t, DefaultRadiusScale.Radius(-5))
	assert.Zero(t, RadiusScale{Root: 6}.Radius(100))
}

func TestBuildMarker(t *testing.T) {
	rec := testRecord(t)
	m := BuildMarker(rec, DefaultRenderOptions())

	assert.Equal(t, 0, m.ID)
	assert.Equal(t, "Reno, NV", m.Label())
	assert.Equal(t, 39.5, m.Lat)
	assert.Equal(t, -119.8, m.Lon)
	assert.InDelta(t, DefaultRadiusScale.Radius(250000), m.Radius, 1e-12)
	assert.Equal(t, DefaultMarkerStyle, m.Style)
	assert.Contains(t, m.Panel.Title, "Reno, NV")
}

func TestPopupHTML(t *testing.T) {
	rec := testRecord(t)
	html := PopupHTML(rec, 4)

	assert.Contains(t, html, "<b>Reno, NV</b>")
	assert.Contains(t, html, "Average Inspection Score (Multifamily): 87.2")
	assert.Contains(t, html, "Average Inspection Score (Public): N/A")
	assert.Contains(t, html, "Average Fatalities (per fire): 0.0123")
	assert.Contains(t, html, "Total Reported Fires (per capita): 0.0031")
}

func TestPopupHTML_EscapesNames(t *testing.T) {
	rec := CityRecord{City: "<script>", State: "XX"}
	html := PopupHTML(rec, 2)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;, XX")
}
