package configuration

import (
	"time"

	"github.com/billtubbs/pid-ref/internal/pid"
)

type LoopConfig struct {
	ID string `json:"id"`
	// SampleTime is the nominal sample time Ts of the loop
	SampleTime time.Duration `json:"sampleTime"`
	// TxWindowSize is the number of execution periods kept for statistics
	TxWindowSize int `json:"txWindowSize"`

	Controller ControllerConfig `json:"controller"`
	Command    CommandConfig    `json:"command"`
	Sensor     SensorConfig     `json:"sensor"`
	Output     OutputConfig     `json:"output"`
}

// ControllerConfig holds the pid.Parameters of a loop,
// missing optional values fall back to the defaults of pid.DefaultParameters.
type ControllerConfig struct {
	Kp   float64  `json:"kp"`
	Ki   float64  `json:"ki"`
	Kd   float64  `json:"kd"`
	TfTs *float64 `json:"tfTs,omitempty"`
	UMin *float64 `json:"uMin,omitempty"`
	UMax *float64 `json:"uMax,omitempty"`
	U0   float64  `json:"u0"`
	B    *float64 `json:"b,omitempty"`
}

func (c ControllerConfig) ToParameters() pid.Parameters {
	params := pid.DefaultParameters(c.Kp, c.Ki, c.Kd)
	if c.TfTs != nil {
		params.TfTs = *c.TfTs
	}
	if c.UMin != nil {
		params.UMin = *c.UMin
	}
	if c.UMax != nil {
		params.UMax = *c.UMax
	}
	params.U0 = c.U0
	if c.B != nil {
		params.B = *c.B
	}
	return params
}

// CommandConfig holds the initial supervisory inputs of a loop
type CommandConfig struct {
	R      float64         `json:"r"`
	Uff    float64         `json:"uff"`
	UMan   float64         `json:"uMan"`
	UTrack float64         `json:"uTrack"`
	Track  bool            `json:"track"`
	Auto   DefaultTrueBool `json:"auto"`
	Windup pid.WindupMode  `json:"windup"`
}

type SensorConfig struct {
	File   *FileSensorConfig   `json:"file,omitempty"`
	Cmd    *CmdSensorConfig    `json:"cmd,omitempty"`
	Serial *SerialSensorConfig `json:"serial,omitempty"`
}

type FileSensorConfig struct {
	Path string `json:"path"`
}

type CmdSensorConfig struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`
}

type SerialSensorConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baudRate"`
	// Query is written to the port before reading a measurement, if set
	Query   string        `json:"query"`
	Timeout time.Duration `json:"timeout"`
}

type OutputConfig struct {
	File   *FileOutputConfig   `json:"file,omitempty"`
	Cmd    *CmdOutputConfig    `json:"cmd,omitempty"`
	Serial *SerialOutputConfig `json:"serial,omitempty"`
}

type FileOutputConfig struct {
	Path string `json:"path"`
}

// CmdOutputConfig executes a command for every new control signal,
// "%value%" in Args is replaced with the control signal.
type CmdOutputConfig struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`
}

type SerialOutputConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baudRate"`
}
