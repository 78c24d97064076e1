// Package page orchestrates one map page: it fetches the dataset, turns
// records into markers on a fresh layer, and routes pointer and click
// events to the popup and sidebar state.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/fire-incident-map/internal/adapter/leaflet"
	"github.com/couchcryptid/fire-incident-map/internal/domain"
	"github.com/couchcryptid/fire-incident-map/internal/observability"
	"github.com/google/uuid"
)

var (
	// ErrNotLoaded is returned while no dataset load has succeeded.
	ErrNotLoaded = errors.New("dataset not loaded")
	// ErrUnknownMarker is returned for marker IDs not on the current layer.
	ErrUnknownMarker = errors.New("unknown marker")
)

// Source fetches the raw dataset document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// ActivationSink receives an event for every sidebar activation.
type ActivationSink interface {
	Publish(ctx context.Context, event domain.ActivationEvent) error
}

// snapshot is everything derived from one successful load. It is replaced
// as a whole so readers never see a half-built layer.
type snapshot struct {
	layer    *leaflet.Layer
	sidebar  *domain.Sidebar
	records  []domain.CityRecord
	document []byte
	loadedAt time.Time
}

// Page holds the marker layer and sidebar of the map.
type Page struct {
	source   Source
	geocoder domain.Geocoder
	sink     ActivationSink
	opts     domain.RenderOptions
	logger   *slog.Logger
	metrics  *observability.Metrics

	loadMu sync.Mutex // serializes loads
	mu     sync.RWMutex
	snap   *snapshot
}

// New creates a Page. Pass a nil geocoder to skip records without
// coordinates, and a nil sink to disable activation events.
func New(source Source, geocoder domain.Geocoder, sink ActivationSink, opts domain.RenderOptions, logger *slog.Logger, metrics *observability.Metrics) *Page {
	return &Page{
		source:   source,
		geocoder: geocoder,
		sink:     sink,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
	}
}

// Load fetches the dataset and replaces the marker layer. The sidebar of
// the new layer starts hidden. On failure the current layer, if any, is
// kept and the error is logged and returned.
func (p *Page) Load(ctx context.Context) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	start := time.Now()
	data, err := p.source.Fetch(ctx)
	if err != nil {
		return p.loadFailed(fmt.Errorf("fetch dataset: %w", err))
	}

	raws, err := domain.ParseDataset(data)
	if err != nil {
		return p.loadFailed(err)
	}

	layer := leaflet.NewLayer()
	records := make([]domain.CityRecord, 0, len(raws))
	for i, raw := range raws {
		rec, ok := p.toRecord(ctx, i, raw)
		if !ok {
			continue
		}
		records = append(records, rec)
		layer.Add(domain.BuildMarker(rec, p.opts))
	}

	snap := &snapshot{
		layer:    layer,
		sidebar:  &domain.Sidebar{},
		records:  records,
		document: data,
		loadedAt: domain.Now(),
	}
	p.mu.Lock()
	p.snap = snap
	p.mu.Unlock()

	p.metrics.DatasetLoads.WithLabelValues("success").Inc()
	p.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	p.metrics.DatasetRecords.Set(float64(len(raws)))
	p.metrics.MarkersRendered.Set(float64(layer.Len()))
	p.logger.Info("dataset loaded",
		"source", p.source.Location(),
		"records", len(raws),
		"markers", layer.Len(),
		"duration", time.Since(start),
	)
	return nil
}

func (p *Page) loadFailed(err error) error {
	p.metrics.DatasetLoads.WithLabelValues("error").Inc()
	p.logger.Error("dataset load failed", "source", p.source.Location(), "error", err)
	return err
}

// toRecord validates one raw record, geocoding it when only the
// coordinates are missing. Skipped records are logged and counted.
func (p *Page) toRecord(ctx context.Context, id int, raw domain.RawCityRecord) (domain.CityRecord, bool) {
	rec, err := domain.ParseCityRecord(id, raw)
	switch {
	case err == nil:
		return rec, true
	case errors.Is(err, domain.ErrMissingCoordinates):
		located, ok := domain.LocateWithGeocoding(ctx, rec, p.geocoder, p.logger)
		if ok {
			return located, true
		}
		p.skip(id, "coordinates", err)
	case errors.Is(err, domain.ErrMalformedRecord):
		p.skip(id, "malformed", err)
	case errors.Is(err, domain.ErrMissingIdentity):
		p.skip(id, "identity", err)
	default:
		p.skip(id, "population", err)
	}
	return domain.CityRecord{}, false
}

func (p *Page) skip(id int, reason string, err error) {
	p.metrics.RecordsSkipped.WithLabelValues(reason).Inc()
	p.logger.Warn("skipping record", "index", id, "reason", reason, "error", err)
}

func (p *Page) current() *snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// CheckReadiness returns nil once a dataset load has succeeded.
func (p *Page) CheckReadiness(_ context.Context) error {
	if p.current() == nil {
		return ErrNotLoaded
	}
	return nil
}

// Markers returns the markers on the current layer. Empty until loaded.
func (p *Page) Markers() []domain.Marker {
	s := p.current()
	if s == nil {
		return []domain.Marker{}
	}
	return s.layer.Markers()
}

// Records returns the records behind the current layer.
func (p *Page) Records() []domain.CityRecord {
	s := p.current()
	if s == nil {
		return []domain.CityRecord{}
	}
	out := make([]domain.CityRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Document returns the dataset document of the last successful load.
func (p *Page) Document() ([]byte, error) {
	s := p.current()
	if s == nil {
		return nil, ErrNotLoaded
	}
	return s.document, nil
}

// LoadedAt reports when the current layer was built.
func (p *Page) LoadedAt() (time.Time, bool) {
	s := p.current()
	if s == nil {
		return time.Time{}, false
	}
	return s.loadedAt, true
}

func (p *Page) marker(id int) (*snapshot, domain.Marker, error) {
	s := p.current()
	if s == nil {
		return nil, domain.Marker{}, fmt.Errorf("marker %d: %w", id, ErrUnknownMarker)
	}
	m, ok := s.layer.Marker(id)
	if !ok {
		return nil, domain.Marker{}, fmt.Errorf("marker %d: %w", id, ErrUnknownMarker)
	}
	return s, m, nil
}

// Hover opens the popup of a marker.
func (p *Page) Hover(id int) (domain.Marker, error) {
	s, m, err := p.marker(id)
	if err != nil {
		return domain.Marker{}, err
	}
	s.layer.Hover(id)
	return m, nil
}

// Leave closes the popup of a marker.
func (p *Page) Leave(id int) error {
	s, _, err := p.marker(id)
	if err != nil {
		return err
	}
	s.layer.Leave(id)
	return nil
}

// OpenPopup returns the marker whose popup is currently open.
func (p *Page) OpenPopup() (domain.Marker, bool) {
	s := p.current()
	if s == nil {
		return domain.Marker{}, false
	}
	return s.layer.OpenPopup()
}

// Activate shows the marker's city in the sidebar, replacing whatever was
// shown, and emits an activation event. Sink failures are logged and
// counted but do not fail the activation.
func (p *Page) Activate(ctx context.Context, id int) (domain.Panel, error) {
	s, m, err := p.marker(id)
	if err != nil {
		return domain.Panel{}, err
	}
	panel := s.sidebar.Activate(m)
	p.metrics.PanelActivations.Inc()

	if p.sink != nil {
		p.publish(ctx, m)
	}
	return panel, nil
}

func (p *Page) publish(ctx context.Context, m domain.Marker) {
	rec := domain.CityRecord{ID: m.ID, City: m.City, State: m.State}
	event := domain.NewActivationEvent(uuid.NewString(), rec)
	if err := p.sink.Publish(ctx, event); err != nil {
		p.metrics.ActivationsPublished.WithLabelValues("error").Inc()
		p.logger.Warn("publish activation failed", "city", rec.Label(), "error", err)
		return
	}
	p.metrics.ActivationsPublished.WithLabelValues("success").Inc()
}

// Sidebar returns the current sidebar state; hidden until a marker is
// activated on the current layer.
func (p *Page) Sidebar() domain.SidebarState {
	s := p.current()
	if s == nil {
		return domain.SidebarState{}
	}
	return s.sidebar.State()
}
