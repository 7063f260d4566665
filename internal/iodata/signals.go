package iodata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/billtubbs/pid-ref/internal/util"
	"github.com/natefinch/atomic"
)

const DefaultLength = 10

// StepSignal steps from 0 to 1 at the third sample
func StepSignal(length int) []float64 {
	signal := make([]float64, length)
	for i := 2; i < length; i++ {
		signal[i] = 1
	}
	return signal
}

// RandomSignal returns standard normal samples, reproducible for a given seed
func RandomSignal(length int, seed int64) []float64 {
	random := rand.New(rand.NewSource(seed))
	signal := make([]float64, length)
	for i := range signal {
		signal[i] = random.NormFloat64()
	}
	return signal
}

// BoolSequence starts with initial and switches to its negation at switchIndex
func BoolSequence(initial bool, switchIndex int, length int) []bool {
	signal := make([]bool, length)
	for i := range signal {
		signal[i] = initial
		if i >= switchIndex {
			signal[i] = !initial
		}
	}
	return signal
}

// IrregularIntervals returns log-normally distributed execution periods with median 1
func IrregularIntervals(length int, sigma float64, seed int64) []float64 {
	random := rand.New(rand.NewSource(seed))
	signal := make([]float64, length)
	for i := range signal {
		signal[i] = math.Exp(sigma * random.NormFloat64())
	}
	return signal
}

// Signal is a sequence of numeric or boolean values
type Signal struct {
	Values []float64
	Bools  []bool
}

func (s Signal) Len() int {
	if s.Bools != nil {
		return len(s.Bools)
	}
	return len(s.Values)
}

// ReadSignal parses a single column CSV file with a "value" header.
// The signal is boolean if all values are "true" or "false".
func ReadSignal(reader io.Reader) (Signal, error) {
	csvReader := csv.NewReader(reader)
	rows, err := csvReader.ReadAll()
	if err != nil {
		return Signal{}, err
	}
	if len(rows) == 0 {
		return Signal{}, errors.New("missing header")
	}

	var texts []string
	for _, row := range rows[1:] {
		texts = append(texts, strings.TrimSpace(row[0]))
	}

	isBool := len(texts) > 0
	for _, text := range texts {
		lower := strings.ToLower(text)
		if lower != "true" && lower != "false" {
			isBool = false
			break
		}
	}

	var signal Signal
	for i, text := range texts {
		if isBool {
			signal.Bools = append(signal.Bools, strings.ToLower(text) == "true")
			continue
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Signal{}, fmt.Errorf("line %d: %w", i+2, err)
		}
		signal.Values = append(signal.Values, value)
	}
	return signal, nil
}

func ReadSignalFile(path string) (Signal, error) {
	file, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	defer file.Close()

	signal, err := ReadSignal(file)
	if err != nil {
		return Signal{}, fmt.Errorf("%s: %w", path, err)
	}
	return signal, nil
}

func WriteSignal(writer io.Writer, signal Signal) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write([]string{"value"}); err != nil {
		return err
	}
	for i := 0; i < signal.Len(); i++ {
		var text string
		if signal.Bools != nil {
			text = strconv.FormatBool(signal.Bools[i])
		} else {
			text = util.FormatFloat(signal.Values[i])
		}
		if err := csvWriter.Write([]string{text}); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func WriteSignalFile(path string, signal Signal) error {
	var buffer bytes.Buffer
	if err := WriteSignal(&buffer, signal); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buffer)
}
