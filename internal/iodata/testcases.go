package iodata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/billtubbs/pid-ref/internal/util"
	"gopkg.in/yaml.v3"
)

var numericInputs = []string{"r", "y", "uff", "uman", "utrack", "Tx"}
var boolInputs = []string{"auto", "track"}

// ControllerSpec describes the controller of a test case, a missing bound is unbounded
type ControllerSpec struct {
	Kp   float64  `yaml:"kp"`
	Ki   float64  `yaml:"ki"`
	Kd   float64  `yaml:"kd"`
	UMin *float64 `yaml:"umin"`
	UMax *float64 `yaml:"umax"`
	TfTs *float64 `yaml:"tf_ts,omitempty"`
	U0   float64  `yaml:"u0,omitempty"`
	B    *float64 `yaml:"b,omitempty"`
}

func (s ControllerSpec) Parameters() pid.Parameters {
	params := pid.DefaultParameters(s.Kp, s.Ki, s.Kd)
	if s.UMin != nil {
		params.UMin = *s.UMin
	}
	if s.UMax != nil {
		params.UMax = *s.UMax
	}
	if s.TfTs != nil {
		params.TfTs = *s.TfTs
	}
	params.U0 = s.U0
	if s.B != nil {
		params.B = *s.B
	}
	return params
}

// InputSpec is a constant number, a constant boolean or the name of a signal file
type InputSpec struct {
	Constant *float64
	Flag     *bool
	File     string
}

func (s *InputSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: input must be a number, a boolean or a file name", node.Line)
	}
	switch node.Tag {
	case "!!bool":
		var flag bool
		if err := node.Decode(&flag); err != nil {
			return err
		}
		s.Flag = &flag
	case "!!int", "!!float":
		var value float64
		if err := node.Decode(&value); err != nil {
			return err
		}
		s.Constant = &value
	case "!!null":
	default:
		s.File = node.Value
	}
	return nil
}

type TestCase struct {
	Controller string               `yaml:"controller"`
	IOData     string               `yaml:"io_data"`
	Inputs     map[string]InputSpec `yaml:"inputs_spec"`
}

// Suite is a set of named controllers and the test cases run against them
type Suite struct {
	Controllers map[string]ControllerSpec `yaml:"controllers"`
	TestCases   map[string]TestCase       `yaml:"test_cases"`
}

func ReadSuite(reader io.Reader) (Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil && !errors.Is(err, io.EOF) {
		return suite, err
	}
	return suite, suite.Validate()
}

func ReadSuiteFile(path string) (Suite, error) {
	file, err := os.Open(path)
	if err != nil {
		return Suite{}, err
	}
	defer file.Close()

	suite, err := ReadSuite(file)
	if err != nil {
		return suite, fmt.Errorf("%s: %w", path, err)
	}
	return suite, nil
}

func (s Suite) Validate() error {
	for _, name := range util.SortedKeys(s.Controllers) {
		if err := s.Controllers[name].Parameters().Validate(); err != nil {
			return fmt.Errorf("controller %s: %w", name, err)
		}
	}
	for _, name := range util.SortedKeys(s.TestCases) {
		testCase := s.TestCases[name]
		if _, ok := s.Controllers[testCase.Controller]; !ok {
			return fmt.Errorf("test case %s: unknown controller: %s", name, testCase.Controller)
		}
		if len(testCase.IOData) <= 0 {
			return fmt.Errorf("test case %s: io_data is missing", name)
		}
		for input, spec := range testCase.Inputs {
			switch {
			case util.ContainsString(numericInputs, input):
				if spec.Flag != nil {
					return fmt.Errorf("test case %s: input %s must be numeric", name, input)
				}
			case util.ContainsString(boolInputs, input):
				if spec.Constant != nil {
					return fmt.Errorf("test case %s: input %s must be a boolean", name, input)
				}
			default:
				return fmt.Errorf("test case %s: unknown input: %s", name, input)
			}
		}
	}
	return nil
}

// inputs resolves the input signals of a test case, missing inputs get their default
type inputs struct {
	dataDir string
	length  int
	specs   map[string]InputSpec
}

func (in inputs) file(spec InputSpec) (Signal, error) {
	name := strings.ReplaceAll(spec.File, ".csv.csv", ".csv")
	signal, err := ReadSignalFile(filepath.Join(in.dataDir, name))
	if err != nil {
		return signal, err
	}
	if signal.Len() < in.length {
		return signal, fmt.Errorf("%s: expected at least %d values, got %d", name, in.length, signal.Len())
	}
	return signal, nil
}

func (in inputs) numeric(name string, defaultValue float64) ([]float64, error) {
	spec, ok := in.specs[name]
	values := make([]float64, in.length)
	switch {
	case !ok || (spec.Constant == nil && spec.File == ""):
		for i := range values {
			values[i] = defaultValue
		}
	case spec.Constant != nil:
		for i := range values {
			values[i] = *spec.Constant
		}
	default:
		signal, err := in.file(spec)
		if err != nil {
			return nil, err
		}
		if signal.Values == nil {
			return nil, fmt.Errorf("input %s: %s is not numeric", name, spec.File)
		}
		copy(values, signal.Values)
	}
	return values, nil
}

func (in inputs) flags(name string, defaultValue bool) ([]bool, error) {
	spec, ok := in.specs[name]
	values := make([]bool, in.length)
	switch {
	case !ok || (spec.Flag == nil && spec.File == ""):
		for i := range values {
			values[i] = defaultValue
		}
	case spec.Flag != nil:
		for i := range values {
			values[i] = *spec.Flag
		}
	default:
		signal, err := in.file(spec)
		if err != nil {
			return nil, err
		}
		if signal.Bools == nil {
			return nil, fmt.Errorf("input %s: %s is not boolean", name, spec.File)
		}
		copy(values, signal.Bools)
	}
	return values, nil
}

// Records builds the input records of the test case, the expected outputs are left at 0
func (tc TestCase) Records(dataDir string, length int) ([]Record, error) {
	in := inputs{dataDir: dataDir, length: length, specs: tc.Inputs}

	numeric := map[string][]float64{}
	defaults := map[string]float64{"Tx": 1}
	for _, name := range numericInputs {
		values, err := in.numeric(name, defaults[name])
		if err != nil {
			return nil, err
		}
		numeric[name] = values
	}
	auto, err := in.flags("auto", true)
	if err != nil {
		return nil, err
	}
	track, err := in.flags("track", false)
	if err != nil {
		return nil, err
	}

	records := make([]Record, length)
	for i := range records {
		records[i] = Record{
			R:      numeric["r"][i],
			Y:      numeric["y"][i],
			Uff:    numeric["uff"][i],
			UMan:   numeric["uman"][i],
			UTrack: numeric["utrack"][i],
			Tx:     numeric["Tx"][i],
			Auto:   auto[i],
			Track:  track[i],
		}
	}
	return records, nil
}
