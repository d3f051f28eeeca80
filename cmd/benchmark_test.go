package cmd

import (
	"testing"
)

func TestBenchmarkRejectsInvalidFlags(t *testing.T) {
	testCases := []struct {
		name       string
		runs       int
		concurrent int
	}{
		{"zero runs", 0, 4},
		{"negative runs", -1, 4},
		{"zero concurrent", 3, 0},
		{"negative concurrent", 3, -2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			origRuns, origConcurrent := benchmarkRuns, benchmarkConcurrent
			defer func() {
				benchmarkRuns, benchmarkConcurrent = origRuns, origConcurrent
			}()

			benchmarkRuns = tc.runs
			benchmarkConcurrent = tc.concurrent

			if err := benchmarkCmd.RunE(benchmarkCmd, nil); err == nil {
				t.Errorf("Expected error for runs=%d concurrent=%d", tc.runs, tc.concurrent)
			}
		})
	}
}
