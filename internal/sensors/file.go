package sensors

import (
	"fmt"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/util"
)

// FileSensor reads a single float value from a text file
type FileSensor struct {
	ID     string                     `json:"id"`
	Config configuration.SensorConfig `json:"configuration"`
}

func (sensor FileSensor) GetId() string {
	return sensor.ID
}

func (sensor FileSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor FileSensor) GetValue() (float64, error) {
	filePath, err := util.ExpandHomeDir(sensor.Config.File.Path)
	if err != nil {
		return 0, err
	}

	value, err := util.ReadFloatFromFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("sensor %s: %w", sensor.ID, err)
	}
	return value, nil
}
