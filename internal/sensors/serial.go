package sensors

import (
	"fmt"
	"strconv"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/serialport"
)

// SerialSensor reads one line per sample from a serial device. If a query is
// configured it is sent first and the response line is used.
type SerialSensor struct {
	ID     string                     `json:"id"`
	Config configuration.SensorConfig `json:"configuration"`

	conn *serialport.LineConn
}

func NewSerialSensor(id string, config configuration.SensorConfig) *SerialSensor {
	return &SerialSensor{
		ID:     id,
		Config: config,
		conn:   serialport.NewLineConn(config.Serial.Port, config.Serial.BaudRate),
	}
}

func (sensor *SerialSensor) GetId() string {
	return sensor.ID
}

func (sensor *SerialSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor *SerialSensor) GetValue() (float64, error) {
	line, err := sensor.conn.Query(sensor.Config.Serial.Query, sensor.Config.Serial.Timeout)
	if err != nil {
		return 0, fmt.Errorf("sensor %s: %w", sensor.ID, err)
	}

	value, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("sensor %s: unable to parse serial response %q: %w", sensor.ID, line, err)
	}
	return value, nil
}

func (sensor *SerialSensor) Close() error {
	return sensor.conn.Close()
}
