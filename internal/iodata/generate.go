package iodata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/billtubbs/pid-ref/internal/util"
)

// GenerateBaseSignals writes the signal files test cases can refer to
// and returns their paths.
func GenerateBaseSignals(dataDir string, length int) ([]string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	signals := []struct {
		name   string
		signal Signal
	}{
		{"step.csv", Signal{Values: StepSignal(length)}},
		{"random_1.csv", Signal{Values: RandomSignal(length, 42)}},
		{"random_2.csv", Signal{Values: RandomSignal(length, 43)}},
		{"true_to_false.csv", Signal{Bools: BoolSequence(true, 5, length)}},
		{"false_to_true.csv", Signal{Bools: BoolSequence(false, 5, length)}},
		{"irregular_time.csv", Signal{Values: IrregularIntervals(length, 0.5, 42)}},
	}

	var paths []string
	for _, s := range signals {
		path := filepath.Join(dataDir, s.name)
		if err := WriteSignalFile(path, s.signal); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Generate runs every test case of the suite and writes its I/O data file,
// it returns the paths of the written files.
func Generate(suite Suite, dataDir string, length int) ([]string, error) {
	var paths []string
	for _, name := range util.SortedKeys(suite.TestCases) {
		testCase := suite.TestCases[name]

		records, err := testCase.Records(dataDir, length)
		if err != nil {
			return paths, fmt.Errorf("test case %s: %w", name, err)
		}
		controller, err := pid.NewController(suite.Controllers[testCase.Controller].Parameters())
		if err != nil {
			return paths, fmt.Errorf("test case %s: %w", name, err)
		}

		outputs := Replay(controller, records)
		for i := range records {
			records[i].U = outputs[i]
		}

		path := filepath.Join(dataDir, testCase.IOData)
		if err := WriteRecordsFile(path, records); err != nil {
			return paths, fmt.Errorf("test case %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// CaseResult is the outcome of replaying one I/O data file
type CaseResult struct {
	Name       string
	File       string
	Samples    int
	Mismatches []Mismatch
}

func (r CaseResult) Passed() bool {
	return len(r.Mismatches) == 0
}

// Verify replays the I/O data file of every test case through a fresh
// controller and compares the outputs with the recorded ones.
func Verify(suite Suite, dataDir string, rtol, atol float64) ([]CaseResult, error) {
	var results []CaseResult
	for _, name := range util.SortedKeys(suite.TestCases) {
		testCase := suite.TestCases[name]
		path := filepath.Join(dataDir, testCase.IOData)

		records, err := ReadRecordsFile(path)
		if err != nil {
			return results, fmt.Errorf("test case %s: %w", name, err)
		}
		controller, err := pid.NewController(suite.Controllers[testCase.Controller].Parameters())
		if err != nil {
			return results, fmt.Errorf("test case %s: %w", name, err)
		}

		outputs := Replay(controller, records)
		results = append(results, CaseResult{
			Name:       name,
			File:       path,
			Samples:    len(records),
			Mismatches: Compare(ExpectedOutputs(records), outputs, rtol, atol),
		})
	}
	return results, nil
}
