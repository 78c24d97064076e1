// Command validate checks a fire-incident dataset before it ships: every
// element has the required fields, values are within range, cities are not
// repeated, and every valid record renders a marker and a full sidebar.
//
// Usage:
//
//	go run ./cmd/validate -dataset dashboard/dashboard.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/fire-incident-map/internal/adapter/dataset"
	"github.com/couchcryptid/fire-incident-map/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) addIssues(issues []domain.Issue) {
	for _, i := range issues {
		p.errors = append(p.errors, i.String())
	}
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	location := flag.String("dataset", "dashboard/dashboard.json", "dataset location: path, http(s) URL or s3://bucket/key")
	timeout := flag.Duration("timeout", 30*time.Second, "dataset fetch timeout")
	flag.Parse()

	if *location == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*location, *timeout, os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

func run(location string, timeout time.Duration, stdout, stderr io.Writer) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Fprintln(stdout, "=== Fire Incident Dataset Validation ===")
	fmt.Fprintln(stdout)

	source, err := dataset.Open(ctx, location, dataset.Options{Timeout: timeout})
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: open dataset: %v\n", err)
		return 1
	}
	data, err := source.Fetch(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: fetch dataset: %v\n", err)
		return 1
	}
	records, err := domain.ParseDataset(data)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateSchema(records),
		validateRanges(records),
		validateDuplicates(records),
		validateRendering(records),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(stdout, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Records: %d in %s\n", len(records), source.Location())

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(stdout, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(stdout, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(stdout, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(stdout, "\nValidation FAILED.")
	return 1
}

func validateSchema(records []domain.RawCityRecord) *phase {
	p := &phase{name: "Phase 1: Required fields"}
	if len(records) == 0 {
		p.errorf("dataset is empty")
	}
	p.addIssues(domain.CheckSchema(records))
	return p
}

func validateRanges(records []domain.RawCityRecord) *phase {
	p := &phase{name: "Phase 2: Value ranges"}
	p.addIssues(domain.CheckRanges(records))
	return p
}

func validateDuplicates(records []domain.RawCityRecord) *phase {
	p := &phase{name: "Phase 3: Duplicate cities"}
	p.addIssues(domain.CheckDuplicates(records))
	return p
}

// validateRendering builds the marker for every complete record and checks
// what the page would show. Records failing the schema phase are skipped.
func validateRendering(records []domain.RawCityRecord) *phase {
	p := &phase{name: "Phase 4: Marker rendering"}
	opts := domain.DefaultRenderOptions()
	for i, raw := range records {
		rec, err := domain.ParseCityRecord(i, raw)
		if err != nil {
			continue
		}
		m := domain.BuildMarker(rec, opts)
		if m.Radius <= 0 {
			p.errorf("[%d] %s: marker radius %v is not positive", i, rec.Label(), m.Radius)
		}
		if m.Popup == "" {
			p.errorf("[%d] %s: popup did not render", i, rec.Label())
		}
		if len(m.Panel.Cards) != len(domain.Statistics) {
			p.errorf("[%d] %s: panel has %d cards, want %d", i, rec.Label(), len(m.Panel.Cards), len(domain.Statistics))
		}
		if !hasStatistics(rec) {
			p.errorf("[%d] %s: no fire statistics", i, rec.Label())
		}
	}
	return p
}

// hasStatistics reports whether any card besides population has a value.
func hasStatistics(rec domain.CityRecord) bool {
	for _, s := range domain.Statistics {
		if s.Key == domain.KeyPopulation {
			continue
		}
		if s.Format(rec, 0) != domain.NotAvailable {
			return true
		}
	}
	return false
}
