package iodata

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSuitePath = "testdata/test_cases.yaml"
const testDataDir = "testdata/data"

func TestReadSuiteFile(t *testing.T) {
	// WHEN
	suite, err := ReadSuiteFile(testSuitePath)

	// THEN
	require.NoError(t, err)
	require.Len(t, suite.Controllers, 2)
	require.Len(t, suite.TestCases, 3)

	pi := suite.Controllers["pi"].Parameters()
	assert.Equal(t, 1.0, pi.Kp)
	assert.Equal(t, -10.0, pi.UMin)
	assert.Equal(t, 10.0, pi.UMax)
	p := suite.Controllers["p"].Parameters()
	assert.True(t, math.IsInf(p.UMin, -1))
	assert.True(t, math.IsInf(p.UMax, 1))

	manual := suite.TestCases["pi_manual"]
	assert.Equal(t, "pi", manual.Controller)
	assert.Equal(t, "step.csv", manual.Inputs["r"].File)
	require.NotNil(t, manual.Inputs["auto"].Flag)
	assert.False(t, *manual.Inputs["auto"].Flag)
	require.NotNil(t, manual.Inputs["uman"].Constant)
	assert.Equal(t, 3.5, *manual.Inputs["uman"].Constant)
}

func TestReadSuite_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected string
	}{
		{"unknown controller", `
controllers: {}
test_cases:
  a: {controller: pi, io_data: a.csv}
`, "test case a: unknown controller: pi"},
		{"missing io data", `
controllers:
  pi: {kp: 1, ki: 1, kd: 0}
test_cases:
  a: {controller: pi}
`, "test case a: io_data is missing"},
		{"unknown input", `
controllers:
  pi: {kp: 1, ki: 1, kd: 0}
test_cases:
  a: {controller: pi, io_data: a.csv, inputs_spec: {w: 1}}
`, "test case a: unknown input: w"},
		{"bool for numeric input", `
controllers:
  pi: {kp: 1, ki: 1, kd: 0}
test_cases:
  a: {controller: pi, io_data: a.csv, inputs_spec: {r: true}}
`, "test case a: input r must be numeric"},
		{"invalid controller", `
controllers:
  pi: {kp: 1, ki: 1, kd: 0, umin: 2, umax: 1}
`, "controller pi: invalid controller parameters"},
		{"unknown field", `
controllers:
  pi: {kp: 1, ki: 1, kd: 0, kx: 1}
`, "field kx not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// WHEN
			_, err := ReadSuite(strings.NewReader(tt.data))

			// THEN
			assert.ErrorContains(t, err, tt.expected)
		})
	}
}

func TestTestCase_Records(t *testing.T) {
	// GIVEN
	suite, err := ReadSuiteFile(testSuitePath)
	require.NoError(t, err)

	// WHEN
	records, err := suite.TestCases["pi_manual"].Records(testDataDir, 4)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{R: 0, UMan: 3.5, Tx: 1},
		{R: 0, UMan: 3.5, Tx: 1},
		{R: 1, UMan: 3.5, Tx: 1},
		{R: 1, UMan: 3.5, Tx: 1},
	}, records)
}

func TestTestCase_Records_SignalTooShort(t *testing.T) {
	// GIVEN
	suite, err := ReadSuiteFile(testSuitePath)
	require.NoError(t, err)

	// WHEN
	_, err = suite.TestCases["pi_step"].Records(testDataDir, 20)

	// THEN
	assert.ErrorContains(t, err, "step.csv: expected at least 20 values, got 10")
}

func TestVerify_RecordedData(t *testing.T) {
	// GIVEN
	suite, err := ReadSuiteFile(testSuitePath)
	require.NoError(t, err)

	// WHEN
	results, err := Verify(suite, testDataDir, DefaultRtol, DefaultAtol)

	// THEN
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, result := range results {
		assert.True(t, result.Passed(), "%s: %v", result.Name, result.Mismatches)
		assert.Equal(t, 10, result.Samples)
	}
	assert.Equal(t, "p_step", results[0].Name)
}

func TestVerify_DetectsMismatch(t *testing.T) {
	// GIVEN
	dataDir := t.TempDir()
	suite, err := ReadSuiteFile(testSuitePath)
	require.NoError(t, err)
	records, err := ReadRecordsFile(filepath.Join(testDataDir, "pi_step.csv"))
	require.NoError(t, err)
	records[4].U += 1e-6
	require.NoError(t, WriteRecordsFile(filepath.Join(dataDir, "pi_step.csv"), records))
	suite.TestCases = map[string]TestCase{"pi_step": suite.TestCases["pi_step"]}

	// WHEN
	results, err := Verify(suite, dataDir, DefaultRtol, DefaultAtol)

	// THEN
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed())
	require.Len(t, results[0].Mismatches, 1)
	assert.Equal(t, 4, results[0].Mismatches[0].Index)
}

func TestGenerate_ThenVerify(t *testing.T) {
	// GIVEN
	dataDir := t.TempDir()
	_, err := GenerateBaseSignals(dataDir, DefaultLength)
	require.NoError(t, err)
	suite, err := ReadSuiteFile(testSuitePath)
	require.NoError(t, err)

	// WHEN
	paths, err := Generate(suite, dataDir, DefaultLength)

	// THEN
	require.NoError(t, err)
	assert.Len(t, paths, 3)
	generated, err := os.ReadFile(filepath.Join(dataDir, "pi_step.csv"))
	require.NoError(t, err)
	recorded, err := ReadRecordsFile(filepath.Join(testDataDir, "pi_step.csv"))
	require.NoError(t, err)
	parsed, err := ReadRecords(strings.NewReader(string(generated)))
	require.NoError(t, err)
	assert.Equal(t, recorded, parsed)

	results, err := Verify(suite, dataDir, DefaultRtol, DefaultAtol)
	require.NoError(t, err)
	for _, result := range results {
		assert.True(t, result.Passed(), result.Name)
	}
}
