package domain

import (
	"html/template"
	"math"
	"strings"
)

// RadiusScale maps population to marker radius as population^(1/Root) / Divisor.
// Root must be greater than 1 for the radius to grow sub-linearly.
type RadiusScale struct {
	Root    float64
	Divisor float64
}

// DefaultRadiusScale is the sixth-root scale used by the published map.
var DefaultRadiusScale = RadiusScale{Root: 6, Divisor: 1}

// Radius returns the marker radius in pixels. Non-positive populations get 0.
func (s RadiusScale) Radius(population int64) float64 {
	if population <= 0 || s.Root <= 0 || s.Divisor <= 0 {
		return 0
	}
	return math.Pow(float64(population), 1/s.Root) / s.Divisor
}

// MarkerStyle holds the Leaflet path options of a circle marker.
type MarkerStyle struct {
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// DefaultMarkerStyle is shared by every city marker.
var DefaultMarkerStyle = MarkerStyle{
	FillColor:   "#FF2E00",
	Color:       "#000",
	Weight:      1,
	Opacity:     0.5,
	FillOpacity: 0.5,
}

// RenderOptions controls how records turn into markers and panels.
type RenderOptions struct {
	Precision      int
	DateRangeLabel string
	Scale          RadiusScale
}

// DefaultRenderOptions returns the options used when nothing is configured.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Precision:      4,
		DateRangeLabel: "2013-2019",
		Scale:          DefaultRadiusScale,
	}
}

// Marker is a circle marker ready to be placed on the map.
type Marker struct {
	ID     int         `json:"id"`
	City   string      `json:"city"`
	State  string      `json:"state"`
	Lat    float64     `json:"lat"`
	Lon    float64     `json:"lng"`
	Radius float64     `json:"radius"`
	Style  MarkerStyle `json:"style"`
	Popup  string      `json:"popup"`
	Panel  Panel       `json:"panel"`
}

// Label returns "City, ST".
func (m Marker) Label() string {
	return m.City + ", " + m.State
}

// BuildMarker derives the marker, popup and sidebar panel for a record.
func BuildMarker(r CityRecord, opts RenderOptions) Marker {
	return Marker{
		ID:     r.ID,
		City:   r.City,
		State:  r.State,
		Lat:    r.Geo.Lat,
		Lon:    r.Geo.Lon,
		Radius: opts.Scale.Radius(r.Population),
		Style:  DefaultMarkerStyle,
		Popup:  PopupHTML(r, opts.Precision),
		Panel:  RenderPanel(r, opts),
	}
}

var popupTmpl = template.Must(template.New("popup").Parse(
	`<b>{{.Label}}</b>
<br>
Average Inspection Score (Multifamily): {{.Multifamily}}
<br>
Average Inspection Score (Public): {{.Public}}
<br>
Average Fatalities (per fire): {{.Fatalities}}
<br>
Total Reported Fires (per capita): {{.TotalPerCapita}}`))

// PopupHTML renders the hover popup: city label and four headline statistics.
func PopupHTML(r CityRecord, precision int) string {
	data := struct {
		Label          string
		Multifamily    string
		Public         string
		Fatalities     string
		TotalPerCapita string
	}{
		Label:          r.Label(),
		Multifamily:    FormatNumber(r.AvgScoreMultifamily, 1),
		Public:         FormatNumber(r.AvgScorePublic, 1),
		Fatalities:     FormatNumber(r.AvgFatalities, precision),
		TotalPerCapita: FormatNumber(r.TotalIncidentsPerCapita, precision),
	}
	return execute(popupTmpl, data)
}

func execute(t *template.Template, data any) string {
	var b strings.Builder
	// The templates are static and their data is plain strings.
	if err := t.Execute(&b, data); err != nil {
		return ""
	}
	return b.String()
}
