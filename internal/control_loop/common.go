package control_loop

import (
	"context"

	"github.com/billtubbs/pid-ref/internal/pid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	LoopMap = cmap.New[ControlLoop]()
)

// ControlLoop periodically reads a sensor, runs a pid.Controller and applies
// the control signal to an actuator.
type ControlLoop interface {
	GetId() string

	// Run executes the loop until the context is cancelled
	Run(ctx context.Context) error

	// Cycle executes a single sample of the loop
	Cycle() error

	Snapshot() Snapshot

	GetCommand() Command
	SetCommand(command Command)
	// UpdateCommand applies a partial command and returns the result
	UpdateCommand(update CommandUpdate) Command

	// Retune changes the gains of the controller, keeping its state
	Retune(kp, ki, kd float64) error

	// Reset clears the controller state and any persisted snapshot
	Reset() error
}

// Snapshot is a point-in-time view of a control loop
type Snapshot struct {
	ID      string  `json:"id"`
	Command Command `json:"command"`

	Kp   float64 `json:"kp"`
	Ki   float64 `json:"ki"`
	Kd   float64 `json:"kd"`
	B    float64 `json:"b"`
	TfTs float64 `json:"tfTs"`
	// output bounds, nil if unbounded
	UMin *float64 `json:"uMin"`
	UMax *float64 `json:"uMax"`

	// last sample
	Y      float64    `json:"y"`
	Tx     float64    `json:"tx"`
	Result pid.Result `json:"result"`

	TxAvg             float64 `json:"txAvg"`
	TxMin             float64 `json:"txMin"`
	TxMax             float64 `json:"txMax"`
	Samples           uint64  `json:"samples"`
	Errors            uint64  `json:"errors"`
	Rediscretizations uint64  `json:"rediscretizations"`
	LastError         string  `json:"lastError,omitempty"`
	// Resuming is true until the persisted output was applied by a tracking sample
	Resuming bool `json:"resuming"`
}
