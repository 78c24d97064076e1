// Package leaflet models the browser map widget: the marker layer with its
// popup state, the Leaflet page that draws it, and a GeoJSON export of the
// plotted cities.
package leaflet

import (
	"sync"

	"github.com/couchcryptid/fire-incident-map/internal/domain"
)

// Layer is the set of circle markers currently on the map. At most one popup
// is open at a time, matching Leaflet's autoClose behavior. Safe for
// concurrent use.
type Layer struct {
	mu      sync.RWMutex
	markers []domain.Marker
	byID    map[int]int
	popup   int
	hasOpen bool
}

// NewLayer returns an empty marker layer.
func NewLayer() *Layer {
	return &Layer{byID: make(map[int]int)}
}

// Add places a marker on the layer. A marker with an ID already present
// replaces the earlier one.
func (l *Layer) Add(m domain.Marker) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i, ok := l.byID[m.ID]; ok {
		l.markers[i] = m
		return
	}
	l.byID[m.ID] = len(l.markers)
	l.markers = append(l.markers, m)
}

// Markers returns the markers in insertion order.
func (l *Layer) Markers() []domain.Marker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Marker, len(l.markers))
	copy(out, l.markers)
	return out
}

func (l *Layer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.markers)
}

// Marker looks up a marker by ID.
func (l *Layer) Marker(id int) (domain.Marker, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byID[id]
	if !ok {
		return domain.Marker{}, false
	}
	return l.markers[i], true
}

// Hover opens the popup of the marker under the pointer, closing any other.
func (l *Layer) Hover(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byID[id]; !ok {
		return false
	}
	l.popup, l.hasOpen = id, true
	return true
}

// Leave closes the popup of the marker the pointer left. Leaving a marker
// whose popup is not open is a no-op.
func (l *Layer) Leave(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byID[id]; !ok {
		return false
	}
	if l.hasOpen && l.popup == id {
		l.hasOpen = false
	}
	return true
}

// OpenPopup returns the marker whose popup is open, if any.
func (l *Layer) OpenPopup() (domain.Marker, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.hasOpen {
		return domain.Marker{}, false
	}
	return l.markers[l.byID[l.popup]], true
}
