package sensors

import (
	"fmt"

	"github.com/billtubbs/pid-ref/internal/configuration"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	SensorMap = cmap.New[Sensor]()
)

// Sensor provides the process measurement y of a control loop
type Sensor interface {
	GetId() string

	GetConfig() configuration.SensorConfig

	// GetValue returns the current value of this sensor
	GetValue() (float64, error)
}

func NewSensor(id string, config configuration.SensorConfig) (Sensor, error) {
	if config.File != nil {
		return &FileSensor{
			ID:     id,
			Config: config,
		}, nil
	}

	if config.Cmd != nil {
		return &CmdSensor{
			ID:     id,
			Config: config,
		}, nil
	}

	if config.Serial != nil {
		return NewSerialSensor(id, config), nil
	}

	return nil, fmt.Errorf("no matching sensor type for loop: %s", id)
}
