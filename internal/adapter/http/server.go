package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/fire-incident-map/internal/adapter/leaflet"
	"github.com/couchcryptid/fire-incident-map/internal/domain"
	"github.com/couchcryptid/fire-incident-map/internal/page"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page is the map state served by the API.
type Page interface {
	sharedobs.ReadinessChecker
	Markers() []domain.Marker
	Records() []domain.CityRecord
	Document() ([]byte, error)
	LoadedAt() (time.Time, bool)
	Hover(id int) (domain.Marker, error)
	Leave(id int) error
	OpenPopup() (domain.Marker, bool)
	Activate(ctx context.Context, id int) (domain.Panel, error)
	Sidebar() domain.SidebarState
}

// markersPath is the base of the marker API; the page fetches panels below it.
const markersPath = "/api/markers"

// Server exposes the map page, its JSON API, and health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	page       Page
	pageOpts   leaflet.PageOptions
	logger     *slog.Logger
}

// NewServer creates an HTTP server for the given page.
func NewServer(addr string, pg Page, pageOpts leaflet.PageOptions, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	pageOpts.PanelEndpoint = markersPath
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		page:     pg,
		pageOpts: pageOpts,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET "+markersPath, s.handleMarkers)
	mux.HandleFunc("POST "+markersPath+"/{id}/popup", s.handleHover)
	mux.HandleFunc("POST "+markersPath+"/{id}/leave", s.handleLeave)
	mux.HandleFunc("POST "+markersPath+"/{id}/panel", s.handlePanel)
	mux.HandleFunc("GET /api/popup", s.handleOpenPopup)
	mux.HandleFunc("GET /api/sidebar", s.handleSidebar)
	mux.HandleFunc("GET /api/cities.geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /dashboard/dashboard.json", s.handleDocument)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(pg))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := leaflet.RenderPage(&buf, s.page.Markers(), s.pageOpts); err != nil {
		s.logger.Error("render page failed", "error", err)
		writeError(w, http.StatusInternalServerError, "render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (s *Server) handleMarkers(w http.ResponseWriter, _ *http.Request) {
	s.setLastModified(w)
	sharedobs.WriteJSON(w, http.StatusOK, s.page.Markers())
}

// popupResponse is the popup state of the marker layer.
type popupResponse struct {
	Open  bool   `json:"open"`
	ID    int    `json:"id"`
	Popup string `json:"popup,omitempty"`
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	id, ok := markerID(w, r)
	if !ok {
		return
	}
	m, err := s.page.Hover(id)
	if err != nil {
		s.writePageError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, popupResponse{Open: true, ID: m.ID, Popup: m.Popup})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := markerID(w, r)
	if !ok {
		return
	}
	if err := s.page.Leave(id); err != nil {
		s.writePageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOpenPopup(w http.ResponseWriter, _ *http.Request) {
	m, ok := s.page.OpenPopup()
	if !ok {
		sharedobs.WriteJSON(w, http.StatusOK, popupResponse{})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, popupResponse{Open: true, ID: m.ID, Popup: m.Popup})
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	id, ok := markerID(w, r)
	if !ok {
		return
	}
	panel, err := s.page.Activate(r.Context(), id)
	if err != nil {
		s.writePageError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, panel)
}

func (s *Server) handleSidebar(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.page.Sidebar())
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	data, err := leaflet.MarshalFeatureCollection(s.page.Records())
	if err != nil {
		s.logger.Error("geojson export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "geojson export")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data) //nolint:errcheck // client went away
}

func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request) {
	doc, err := s.page.Document()
	if err != nil {
		s.writePageError(w, err)
		return
	}
	s.setLastModified(w)
	w.Header().Set("Content-Type", "application/json")
	w.Write(doc) //nolint:errcheck // client went away
}

// setLastModified stamps responses derived from the current layer with the
// time it was loaded.
func (s *Server) setLastModified(w http.ResponseWriter) {
	if at, ok := s.page.LoadedAt(); ok {
		w.Header().Set("Last-Modified", at.UTC().Format(http.TimeFormat))
	}
}

func (s *Server) writePageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, page.ErrUnknownMarker):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, page.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func markerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, "invalid marker id")
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
