package domain

import (
	"html/template"
	"strings"
	"sync"
)

// StatKind selects how a statistic is formatted.
type StatKind int

const (
	KindScore    StatKind = iota // one decimal
	KindRate                     // configured precision
	KindCurrency                 // US dollars
	KindCount                    // grouped integer
)

// Statistic is one tracked value shown as a sidebar card.
type Statistic struct {
	Key   string
	Label string
	Kind  StatKind
	Float func(CityRecord) *float64
	Count func(CityRecord) *int64
}

// Format renders the statistic's value for a record.
func (s Statistic) Format(r CityRecord, precision int) string {
	switch s.Kind {
	case KindScore:
		return FormatNumber(s.Float(r), 1)
	case KindRate:
		return FormatNumber(s.Float(r), precision)
	case KindCurrency:
		return FormatCurrency(s.Float(r))
	default:
		return FormatCount(s.Count(r))
	}
}

// Statistics lists the sidebar cards in display order.
var Statistics = []Statistic{
	{Key: KeyAvgScoreMultifamily, Label: "Average Multifamily Inspection Score", Kind: KindScore,
		Float: func(r CityRecord) *float64 { return r.AvgScoreMultifamily }},
	{Key: KeyAvgScorePublic, Label: "Average Public Inspection Score", Kind: KindScore,
		Float: func(r CityRecord) *float64 { return r.AvgScorePublic }},
	{Key: KeyAvgSpread, Label: "Average Additional Buildings Ignited (per fire)", Kind: KindRate,
		Float: func(r CityRecord) *float64 { return r.AvgSpread }},
	{Key: KeyAvgFatalities, Label: "Average Fatalities (per fire)", Kind: KindRate,
		Float: func(r CityRecord) *float64 { return r.AvgFatalities }},
	{Key: KeyAvgInjuries, Label: "Average Injuries (per fire)", Kind: KindRate,
		Float: func(r CityRecord) *float64 { return r.AvgInjuries }},
	{Key: KeyAvgMoneyLost, Label: "Average Value of Property Lost (per fire)", Kind: KindCurrency,
		Float: func(r CityRecord) *float64 { return r.AvgMoneyLost }},
	{Key: KeyAvgAlarms, Label: "Average Alarms Triggered (per fire)", Kind: KindRate,
		Float: func(r CityRecord) *float64 { return r.AvgAlarms }},
	{Key: KeyTotalIncidentsAdj, Label: "Total Reported Fires (per capita)", Kind: KindRate,
		Float: func(r CityRecord) *float64 { return r.TotalIncidentsPerCapita }},
	{Key: KeyCookingFiresAdj, Label: "Reported Cooking Fires (per capita)", Kind: KindRate,
		Float: func(r CityRecord) *float64 { return r.CookingFiresPerCapita }},
	{Key: KeyVehicleFiresAdj, Label: "Reported Passenger Vehicle Fires (per capita)", Kind: KindRate,
		Float: func(r CityRecord) *float64 { return r.VehicleFiresPerCapita }},
	{Key: KeyTrashFiresAdj, Label: "Reported Outside Trash/Rubbish/Waste Fires (per capita)", Kind: KindRate,
		Float: func(r CityRecord) *float64 { return r.TrashFiresPerCapita }},
	{Key: KeyBrushFiresAdj, Label: "Reported Brush/Grass Fires (per capita)", Kind: KindRate,
		Float: func(r CityRecord) *float64 { return r.BrushFiresPerCapita }},
	{Key: KeyPopulation, Label: "Population", Kind: KindCount,
		Count: func(r CityRecord) *int64 { p := r.Population; return &p }},
	{Key: KeySupport, Label: "Total Fires Reported to NFIRS", Kind: KindCount,
		Count: func(r CityRecord) *int64 { return r.TotalIncidents }},
}

// Card is one labeled statistic in the sidebar.
type Card struct {
	Label      string `json:"label"`
	Value      string `json:"value"`
	Percentile string `json:"percentile,omitempty"` // "Higher than 87%", empty when unranked
}

// Panel is the full sidebar content for one city.
type Panel struct {
	Title     string `json:"title"`
	Cards     []Card `json:"cards"`
	CardsHTML string `json:"cards_html"`
}

var (
	titleTmpl = template.Must(template.New("title").Parse(
		`<span class="text-2xl font-extrabold">{{.Label}}</span>
<br>
<span class="text-gray-500 text-lg">{{.DateRange}}</span>`))

	cardTmpl = template.Must(template.New("card").Parse(`
<div class="max-w-sm rounded-lg overflow-hidden shadow-lg bg-white my-3">
    <div class="px-6 py-4">
        <div class="font-semibold text-lg mb-2 text-gray-700">{{.Label}}</div>
        <p class="text-gray-600 text-base">{{.Value}}</p>
        {{- if .Percentile}}
        <p class="text-gray-500 text-sm">{{.Percentile}}</p>
        {{- end}}
    </div>
</div>`))
)

// RenderPanel builds the sidebar title and one card per tracked statistic.
func RenderPanel(r CityRecord, opts RenderOptions) Panel {
	cards := make([]Card, 0, len(Statistics))
	var html strings.Builder
	for _, s := range Statistics {
		card := Card{Label: s.Label, Value: s.Format(r, opts.Precision)}
		if p := r.Percentile(s.Key); p != nil {
			card.Percentile = "Higher than " + FormatPercentile(p)
		}
		cards = append(cards, card)
		html.WriteString(execute(cardTmpl, card))
	}

	title := execute(titleTmpl, struct{ Label, DateRange string }{r.Label(), opts.DateRangeLabel})
	return Panel{Title: title, Cards: cards, CardsHTML: html.String()}
}

// SidebarState is a point-in-time view of the sidebar.
type SidebarState struct {
	Visible  bool   `json:"visible"`
	MarkerID int    `json:"marker_id"`
	City     string `json:"city,omitempty"`
	Panel    *Panel `json:"panel,omitempty"`
}

// Sidebar is the single panel of a page. It starts hidden; activating any
// marker shows it and replaces its whole content. There is no close
// transition. Safe for concurrent use.
type Sidebar struct {
	mu    sync.RWMutex
	state SidebarState
}

// Activate shows the panel for m, overwriting any previous city.
func (s *Sidebar) Activate(m Marker) Panel {
	panel := m.Panel
	s.mu.Lock()
	s.state = SidebarState{
		Visible:  true,
		MarkerID: m.ID,
		City:     m.Label(),
		Panel:    &panel,
	}
	s.mu.Unlock()
	return panel
}

// State returns the current panel state.
func (s *Sidebar) State() SidebarState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Visible reports whether a city is shown.
func (s *Sidebar) Visible() bool {
	return s.State().Visible
}
