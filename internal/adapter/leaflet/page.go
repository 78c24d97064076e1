package leaflet

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/couchcryptid/fire-incident-map/internal/domain"
)

// Map view defaults of the published page.
const (
	DefaultCenterLat   = 37.8
	DefaultCenterLon   = -96.0
	DefaultZoom        = 4
	DefaultMaxZoom     = 18
	DefaultAttribution = `Map data &copy; <a href="https://www.openstreetmap.org/">OpenStreetMap</a> contributors`
	DefaultTitle       = "Fire Incidents by City"
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
)

//go:embed index.html.tmpl
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// PageOptions configures the rendered map page.
type PageOptions struct {
	Title       string
	TileURL     string
	Attribution string

	// PanelEndpoint is the base path of the panel API (".../{id}/panel").
	// When empty each marker carries its panel inline and the page works
	// without a server.
	PanelEndpoint string
}

type pageData struct {
	Title         string
	TileURL       string
	Attribution   string
	PanelEndpoint string
	CenterLat     float64
	CenterLon     float64
	Zoom          int
	MaxZoom       int
	Markers       template.JS
}

// RenderPage writes the Leaflet page for the given markers.
func RenderPage(w io.Writer, markers []domain.Marker, opts PageOptions) error {
	if opts.PanelEndpoint != "" {
		// Panels are fetched on click; keep the page small.
		stripped := make([]domain.Marker, len(markers))
		for i, m := range markers {
			m.Panel = domain.Panel{}
			stripped[i] = m
		}
		markers = stripped
	}
	if markers == nil {
		markers = []domain.Marker{}
	}

	js, err := json.Marshal(markers)
	if err != nil {
		return fmt.Errorf("marshal markers: %w", err)
	}

	data := pageData{
		Title:         orDefault(opts.Title, DefaultTitle),
		TileURL:       orDefault(opts.TileURL, DefaultTileURL),
		Attribution:   orDefault(opts.Attribution, DefaultAttribution),
		PanelEndpoint: opts.PanelEndpoint,
		CenterLat:     DefaultCenterLat,
		CenterLon:     DefaultCenterLon,
		Zoom:          DefaultZoom,
		MaxZoom:       DefaultMaxZoom,
		Markers:       template.JS(js), //nolint:gosec // json.Marshal escapes <, > and &
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
