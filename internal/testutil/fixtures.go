// Package testutil provides shared test infrastructure for the simulation client.
// It holds canned service responses and assertion helpers used across the
// sim/compose, sim/render and sim/submit test packages.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/eduwrench/simclient/sim"
)

// SingleTaskBody is the one-record response used by the success scenario.
const SingleTaskBody = `{"simulation_output":"ok","task_data":[{"taskId":1,"host":"h0","type":"compute","startTime":0,"endTime":10}]}`

// EmptyBody is a well-formed response with no task data.
const EmptyBody = `{"simulation_output":"","task_data":[]}`

// ResponseBody returns the raw bytes of testdata/<name>.json.
// The path is resolved relative to this source file: internal/testutil/ → testdata/.
func ResponseBody(t *testing.T, name string) []byte {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "testdata", name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read response fixture: %v", err)
	}
	return data
}

// LoadResponse decodes testdata/<name>.json, failing the test on any malformation.
func LoadResponse(t *testing.T, name string) *sim.SimulationResponse {
	t.Helper()
	resp, err := sim.DecodeResponse(ResponseBody(t, name))
	if err != nil {
		t.Fatalf("Failed to decode response fixture %s: %v", name, err)
	}
	return resp
}

// SingleTask returns the decoded SingleTaskBody.
func SingleTask(t *testing.T) *sim.SimulationResponse {
	t.Helper()
	resp, err := sim.DecodeResponse([]byte(SingleTaskBody))
	if err != nil {
		t.Fatalf("Failed to decode single task body: %v", err)
	}
	return resp
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
