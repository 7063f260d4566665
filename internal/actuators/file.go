package actuators

import (
	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/billtubbs/pid-ref/internal/util"
)

// FileActuator writes the control signal into a text file, replacing it atomically
type FileActuator struct {
	ID     string                     `json:"id"`
	Config configuration.OutputConfig `json:"configuration"`
	Value  float64                    `json:"value"`
}

func (actuator *FileActuator) GetId() string {
	return actuator.ID
}

func (actuator *FileActuator) GetConfig() configuration.OutputConfig {
	return actuator.Config
}

func (actuator *FileActuator) SetValue(value float64) error {
	filePath, err := util.ExpandHomeDir(actuator.Config.File.Path)
	if err != nil {
		return err
	}

	err = util.WriteFloatToFileAtomic(value, filePath)
	if err != nil {
		ui.Error("Unable to write to file: %v", actuator.Config.File.Path)
		return err
	}
	actuator.Value = value
	return nil
}

func (actuator *FileActuator) GetValue() float64 {
	return actuator.Value
}
