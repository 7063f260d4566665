package iodata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/billtubbs/pid-ref/internal/util"
	"github.com/natefinch/atomic"
)

// Header is the column layout of an I/O data file
var Header = []string{"r", "y", "uff", "uman", "utrack", "Tx", "auto", "track", "u"}

// Record is one sample of an I/O data file: the controller inputs and the expected output
type Record struct {
	R      float64
	Y      float64
	Uff    float64
	UMan   float64
	UTrack float64
	Tx     float64
	Auto   bool
	Track  bool
	U      float64
}

func (r Record) Input() pid.Input {
	return pid.Input{
		R:      r.R,
		Y:      r.Y,
		Uff:    r.Uff,
		UMan:   r.UMan,
		UTrack: r.UTrack,
		Tx:     r.Tx,
		Track:  r.Track,
		Auto:   r.Auto,
		Windup: pid.WindupNone,
	}
}

// ReadRecords parses I/O data in CSV format. Columns are matched by their header name.
func ReadRecords(reader io.Reader) ([]Record, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header")
		}
		return nil, err
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range Header {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column: %s", name)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		p := rowParser{row: row, columns: columns}
		record := Record{
			R:      p.float("r"),
			Y:      p.float("y"),
			Uff:    p.float("uff"),
			UMan:   p.float("uman"),
			UTrack: p.float("utrack"),
			Tx:     p.float("Tx"),
			Auto:   p.bool("auto"),
			Track:  p.bool("track"),
			U:      p.float("u"),
		}
		if p.err != nil {
			return nil, fmt.Errorf("line %d: %w", line, p.err)
		}
		records = append(records, record)
	}

	return records, nil
}

type rowParser struct {
	row     []string
	columns map[string]int
	err     error
}

func (p *rowParser) value(name string) string {
	return strings.TrimSpace(p.row[p.columns[name]])
}

func (p *rowParser) float(name string) float64 {
	if p.err != nil {
		return 0
	}
	value, err := strconv.ParseFloat(p.value(name), 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", name, err)
	}
	return value
}

func (p *rowParser) bool(name string) bool {
	if p.err != nil {
		return false
	}
	value, err := parseBool(p.value(name))
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", name, err)
	}
	return value
}

func parseBool(text string) (bool, error) {
	switch strings.ToLower(text) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean: %q", text)
}

// WriteRecords writes I/O data in CSV format
func WriteRecords(writer io.Writer, records []Record) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(Header); err != nil {
		return err
	}
	for _, record := range records {
		row := []string{
			util.FormatFloat(record.R),
			util.FormatFloat(record.Y),
			util.FormatFloat(record.Uff),
			util.FormatFloat(record.UMan),
			util.FormatFloat(record.UTrack),
			util.FormatFloat(record.Tx),
			strconv.FormatBool(record.Auto),
			strconv.FormatBool(record.Track),
			util.FormatFloat(record.U),
		}
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func ReadRecordsFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := ReadRecords(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteRecordsFile replaces the file at path with the given records
func WriteRecordsFile(path string, records []Record) error {
	var buffer bytes.Buffer
	if err := WriteRecords(&buffer, records); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buffer)
}
