package actuators

import (
	"fmt"

	"github.com/billtubbs/pid-ref/internal/configuration"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	ActuatorMap = cmap.New[Actuator]()
)

// Actuator applies the control signal u of a control loop
type Actuator interface {
	GetId() string

	GetConfig() configuration.OutputConfig

	// SetValue applies the given control signal
	SetValue(value float64) error

	// GetValue returns the last control signal that was applied successfully
	GetValue() float64
}

func NewActuator(id string, config configuration.OutputConfig) (Actuator, error) {
	if config.File != nil {
		return &FileActuator{
			ID:     id,
			Config: config,
		}, nil
	}

	if config.Cmd != nil {
		return &CmdActuator{
			ID:     id,
			Config: config,
		}, nil
	}

	if config.Serial != nil {
		return NewSerialActuator(id, config), nil
	}

	return nil, fmt.Errorf("no matching output type for loop: %s", id)
}
