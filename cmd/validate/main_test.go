package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboard.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Valid(t *testing.T) {
	path := writeDataset(t, `[
{"CITY":"Reno","STATE":"NV","LATITUDE":39.5,"LONGITUDE":-119.8,"POPULATION":250000,"AVG_FATALITIES":0.0123},
{"CITY":"Sparks","STATE":"NV","LATITUDE":39.53,"LONGITUDE":-119.75,"POPULATION":108000,"SUPPORT":900}
]`)
	var stdout, stderr bytes.Buffer

	code := run(path, time.Second, &stdout, &stderr)

	assert.Equal(t, 0, code, stdout.String())
	assert.Contains(t, stdout.String(), "All validations passed.")
	assert.Contains(t, stdout.String(), "Records: 2")
}

func TestRun_Failures(t *testing.T) {
	path := writeDataset(t, `[
{"CITY":"Reno","STATE":"NV","LATITUDE":39.5,"LONGITUDE":-119.8,"POPULATION":250000,"AVG_FATALITIES":0.01},
{"CITY":"reno","STATE":"nv","LATITUDE":39.5,"LONGITUDE":-119.8,"POPULATION":250000,"AVG_FATALITIES":0.01},
{"CITY":"Nowhere","STATE":"NV","LATITUDE":120,"LONGITUDE":-119.8,"POPULATION":5,"AVG_INJURIES":-1},
{"STATE":"NV","LATITUDE":39,"LONGITUDE":-119,"POPULATION":10},
{"CITY":"Elko","STATE":"NV","LATITUDE":40.8,"LONGITUDE":-115.7,"POPULATION":20000}
]`)
	var stdout, stderr bytes.Buffer

	code := run(path, time.Second, &stdout, &stderr)
	out := stdout.String()

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Validation FAILED.")
	assert.Contains(t, out, "CITY is missing")
	assert.Contains(t, out, "LATITUDE 120 out of range")
	assert.Contains(t, out, "AVG_INJURIES -1 is negative")
	assert.Contains(t, out, "duplicate of element 0")
	assert.Contains(t, out, "Elko, NV: no fire statistics")
}

func TestRun_MalformedElementIsReported(t *testing.T) {
	path := writeDataset(t, `[
{"CITY":"Reno","STATE":"NV","LATITUDE":39.5,"LONGITUDE":-119.8,"POPULATION":250000,"AVG_FATALITIES":0.0123},
{"CITY":"Elko","STATE":"NV","LATITUDE":"n/a","LONGITUDE":-115.7,"POPULATION":20000}
]`)
	var stdout, stderr bytes.Buffer

	code := run(path, time.Second, &stdout, &stderr)
	out := stdout.String()

	assert.Equal(t, 1, code)
	assert.Empty(t, stderr.String())
	assert.Contains(t, out, "Records: 2")
	assert.Contains(t, out, "Elko, NV: malformed: element 1")
}

func TestRun_Empty(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(writeDataset(t, `[]`), time.Second, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "dataset is empty")
}

func TestRun_Unreadable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(writeDataset(t, `not json`), time.Second, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "FATAL")
}
