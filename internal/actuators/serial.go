package actuators

import (
	"fmt"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/serialport"
	"github.com/billtubbs/pid-ref/internal/util"
)

// SerialActuator writes every control signal as one text line to a serial device
type SerialActuator struct {
	ID     string                     `json:"id"`
	Config configuration.OutputConfig `json:"configuration"`
	Value  float64                    `json:"value"`

	conn *serialport.LineConn
}

func NewSerialActuator(id string, config configuration.OutputConfig) *SerialActuator {
	return &SerialActuator{
		ID:     id,
		Config: config,
		conn:   serialport.NewLineConn(config.Serial.Port, config.Serial.BaudRate),
	}
}

func (actuator *SerialActuator) GetId() string {
	return actuator.ID
}

func (actuator *SerialActuator) GetConfig() configuration.OutputConfig {
	return actuator.Config
}

func (actuator *SerialActuator) SetValue(value float64) error {
	if err := actuator.conn.WriteLine(util.FormatFloat(value)); err != nil {
		return fmt.Errorf("output %s: %w", actuator.ID, err)
	}
	actuator.Value = value
	return nil
}

func (actuator *SerialActuator) GetValue() float64 {
	return actuator.Value
}

func (actuator *SerialActuator) Close() error {
	return actuator.conn.Close()
}
