package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Issue describes one problem found in a dataset element.
type Issue struct {
	Index   int
	Label   string
	Message string
}

func (i Issue) String() string {
	if i.Label == "" {
		return fmt.Sprintf("[%d] %s", i.Index, i.Message)
	}
	return fmt.Sprintf("[%d] %s: %s", i.Index, i.Label, i.Message)
}

func rawLabel(r RawCityRecord) string {
	city, state := trimmed(r.City), trimmed(r.State)
	if city == "" && state == "" {
		return ""
	}
	return city + ", " + state
}

// CheckSchema reports elements that did not decode or miss a required field.
func CheckSchema(records []RawCityRecord) []Issue {
	var issues []Issue
	for i, r := range records {
		label := rawLabel(r)
		if r.DecodeErr != nil {
			issues = append(issues, Issue{i, label, "malformed: " + r.DecodeErr.Error()})
			continue
		}
		if trimmed(r.City) == "" {
			issues = append(issues, Issue{i, label, "CITY is missing"})
		}
		if trimmed(r.State) == "" {
			issues = append(issues, Issue{i, label, "STATE is missing"})
		}
		if r.Lat == nil {
			issues = append(issues, Issue{i, label, "LATITUDE is missing"})
		}
		if r.Lon == nil {
			issues = append(issues, Issue{i, label, "LONGITUDE is missing"})
		}
		if _, ok := parseCount(r.Population); !ok {
			issues = append(issues, Issue{i, label, "POPULATION is missing or not an integer"})
		}
	}
	return issues
}

// CheckRanges reports values outside their domain: coordinates, population,
// negative statistics and percentile ranks outside [0,1].
func CheckRanges(records []RawCityRecord) []Issue {
	var issues []Issue
	for i, r := range records {
		if r.DecodeErr != nil {
			continue
		}
		label := rawLabel(r)
		if r.Lat != nil && (*r.Lat < -90 || *r.Lat > 90) {
			issues = append(issues, Issue{i, label, fmt.Sprintf("LATITUDE %v out of range", *r.Lat)})
		}
		if r.Lon != nil && (*r.Lon < -180 || *r.Lon > 180) {
			issues = append(issues, Issue{i, label, fmt.Sprintf("LONGITUDE %v out of range", *r.Lon)})
		}
		if p, ok := parseCount(r.Population); ok && p <= 0 {
			issues = append(issues, Issue{i, label, fmt.Sprintf("POPULATION %d is not positive", p)})
		}

		rec, _ := ParseCityRecord(i, r)
		for _, s := range Statistics {
			if s.Float == nil {
				continue
			}
			if v := s.Float(rec); v != nil && *v < 0 {
				issues = append(issues, Issue{i, label, fmt.Sprintf("%s %v is negative", s.Key, *v)})
			}
		}

		keys := make([]string, 0, len(r.Percentiles))
		for k := range r.Percentiles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v := r.Percentiles[k]; v < 0 || v > 1 {
				issues = append(issues, Issue{i, label, fmt.Sprintf("%s%s %v outside [0,1]", k, percentileSuffix, v)})
			}
		}
	}
	return issues
}

// CheckDuplicates reports city/state pairs that appear more than once.
func CheckDuplicates(records []RawCityRecord) []Issue {
	var issues []Issue
	seen := make(map[string]int, len(records))
	for i, r := range records {
		label := rawLabel(r)
		if label == "" {
			continue
		}
		key := strings.ToUpper(label)
		if first, ok := seen[key]; ok {
			issues = append(issues, Issue{i, label, fmt.Sprintf("duplicate of element %d", first)})
			continue
		}
		seen[key] = i
	}
	return issues
}
