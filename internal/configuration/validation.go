package configuration

import (
	"errors"
	"fmt"

	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/billtubbs/pid-ref/internal/util"
)

func Validate(configPath string) error {
	return validateConfig(&CurrentConfig, configPath)
}

func validateConfig(config *Configuration, path string) error {
	err := validateLoops(config)
	if err != nil {
		return err
	}

	if containsCmdLoops(config) {
		if _, err := util.CheckFilePermissionsForExecution(path); err != nil {
			return fmt.Errorf("config file '%s' has invalid permissions: %w", path, err)
		}
	}

	return nil
}

func containsCmdLoops(config *Configuration) bool {
	for _, loopConfig := range config.Loops {
		if loopConfig.Sensor.Cmd != nil || loopConfig.Output.Cmd != nil {
			return true
		}
	}

	return false
}

func validateLoops(config *Configuration) error {
	if len(config.Loops) <= 0 {
		ui.Warning("No control loops configured")
	}

	var loopIds []string
	outputs := map[string]string{}
	for _, loopConfig := range config.Loops {
		if len(loopConfig.ID) <= 0 {
			return errors.New("loop id must not be empty")
		}
		if util.ContainsString(loopIds, loopConfig.ID) {
			return fmt.Errorf("duplicate loop id detected: %s", loopConfig.ID)
		}
		loopIds = append(loopIds, loopConfig.ID)

		if loopConfig.SampleTime <= 0 {
			return fmt.Errorf("loop %s: sampleTime must be > 0", loopConfig.ID)
		}
		if loopConfig.TxWindowSize <= 0 {
			return fmt.Errorf("loop %s: txWindowSize must be >= 1", loopConfig.ID)
		}

		if err := loopConfig.Controller.ToParameters().Validate(); err != nil {
			return fmt.Errorf("loop %s: %w", loopConfig.ID, err)
		}

		if err := validateSensor(loopConfig); err != nil {
			return err
		}
		if err := validateOutput(loopConfig); err != nil {
			return err
		}

		target := outputTarget(loopConfig.Output)
		if other, exists := outputs[target]; exists {
			return fmt.Errorf("loop %s: output '%s' is already used by loop %s", loopConfig.ID, target, other)
		}
		outputs[target] = loopConfig.ID
	}

	return nil
}

func validateSensor(loopConfig LoopConfig) error {
	sensorConfig := loopConfig.Sensor

	subConfigs := 0
	if sensorConfig.File != nil {
		subConfigs++
	}
	if sensorConfig.Cmd != nil {
		subConfigs++
	}
	if sensorConfig.Serial != nil {
		subConfigs++
	}
	if subConfigs > 1 {
		return fmt.Errorf("loop %s: only one sensor type can be used per sensor definition block", loopConfig.ID)
	}
	if subConfigs <= 0 {
		return fmt.Errorf("loop %s: sub-configuration for sensor is missing, use one of: file | cmd | serial", loopConfig.ID)
	}

	if sensorConfig.File != nil && len(sensorConfig.File.Path) <= 0 {
		return fmt.Errorf("loop %s: no sensor file path provided", loopConfig.ID)
	}
	if sensorConfig.Cmd != nil && len(sensorConfig.Cmd.Exec) <= 0 {
		return fmt.Errorf("loop %s: sensor executable is missing", loopConfig.ID)
	}
	if sensorConfig.Serial != nil {
		if len(sensorConfig.Serial.Port) <= 0 {
			return fmt.Errorf("loop %s: sensor serial port is missing", loopConfig.ID)
		}
		if sensorConfig.Serial.BaudRate < 0 {
			return fmt.Errorf("loop %s: sensor baudRate must be >= 0", loopConfig.ID)
		}
	}

	return nil
}

func validateOutput(loopConfig LoopConfig) error {
	outputConfig := loopConfig.Output

	subConfigs := 0
	if outputConfig.File != nil {
		subConfigs++
	}
	if outputConfig.Cmd != nil {
		subConfigs++
	}
	if outputConfig.Serial != nil {
		subConfigs++
	}
	if subConfigs > 1 {
		return fmt.Errorf("loop %s: only one output type can be used per output definition block", loopConfig.ID)
	}
	if subConfigs <= 0 {
		return fmt.Errorf("loop %s: sub-configuration for output is missing, use one of: file | cmd | serial", loopConfig.ID)
	}

	if outputConfig.File != nil && len(outputConfig.File.Path) <= 0 {
		return fmt.Errorf("loop %s: no output file path provided", loopConfig.ID)
	}
	if outputConfig.Cmd != nil && len(outputConfig.Cmd.Exec) <= 0 {
		return fmt.Errorf("loop %s: output executable is missing", loopConfig.ID)
	}
	if outputConfig.Serial != nil {
		if len(outputConfig.Serial.Port) <= 0 {
			return fmt.Errorf("loop %s: output serial port is missing", loopConfig.ID)
		}
		if outputConfig.Serial.BaudRate < 0 {
			return fmt.Errorf("loop %s: output baudRate must be >= 0", loopConfig.ID)
		}
	}

	return nil
}

// outputTarget identifies the device an output writes to
func outputTarget(output OutputConfig) string {
	switch {
	case output.File != nil:
		return "file:" + output.File.Path
	case output.Serial != nil:
		return "serial:" + output.Serial.Port
	case output.Cmd != nil:
		return "cmd:" + output.Cmd.Exec + fmt.Sprint(output.Cmd.Args)
	}
	return ""
}
