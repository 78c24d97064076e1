// Command render writes a self-contained static map page. Markers, popups
// and sidebar panels are embedded, so the output can be hosted without the
// firemap service.
//
// Usage:
//
//	go run ./cmd/render \
//	  -dataset dashboard/dashboard.json \
//	  -out public
//
// The output directory receives index.html, the dataset at
// dashboard/dashboard.json, and a GeoJSON export at cities.geojson.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/fire-incident-map/internal/adapter/dataset"
	"github.com/couchcryptid/fire-incident-map/internal/adapter/leaflet"
	"github.com/couchcryptid/fire-incident-map/internal/domain"
	"github.com/couchcryptid/fire-incident-map/internal/observability"
	"github.com/couchcryptid/fire-incident-map/internal/page"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	location := fs.String("dataset", "dashboard/dashboard.json", "dataset location: path, http(s) URL or s3://bucket/key")
	outDir := fs.String("out", "", "output directory")
	tiles := fs.String("tiles", leaflet.DefaultTileURL, "tile URL template")
	precision := fs.Int("precision", 4, "decimal places for rates")
	dateRange := fs.String("date-range", "2013-2019", "date range shown under the city name")
	timeout := fs.Duration("timeout", 30*time.Second, "dataset fetch timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outDir == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	source, err := dataset.Open(ctx, *location, dataset.Options{Timeout: *timeout, Logger: logger})
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}

	opts := domain.DefaultRenderOptions()
	opts.Precision = *precision
	opts.DateRangeLabel = *dateRange
	pg := page.New(source, nil, nil, opts, logger, observability.NewMetricsForTesting())
	if err := pg.Load(ctx); err != nil {
		return err
	}

	var html bytes.Buffer
	if err := leaflet.RenderPage(&html, pg.Markers(), leaflet.PageOptions{TileURL: *tiles}); err != nil {
		return err
	}
	doc, err := pg.Document()
	if err != nil {
		return err
	}
	geo, err := leaflet.MarshalFeatureCollection(pg.Records())
	if err != nil {
		return err
	}

	files := map[string][]byte{
		"index.html":               html.Bytes(),
		"dashboard/dashboard.json": doc,
		"cities.geojson":           geo,
	}
	for name, data := range files {
		if err := writeFile(filepath.Join(*outDir, name), data); err != nil {
			return err
		}
	}

	logger.Info("static page written", "out", *outDir, "markers", len(pg.Markers()))
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // static site output
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
