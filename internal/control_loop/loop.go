package control_loop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/billtubbs/pid-ref/internal/actuators"
	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/persistence"
	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/billtubbs/pid-ref/internal/sensors"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/billtubbs/pid-ref/internal/util"
	"github.com/oklog/run"
)

const DefaultCheckpointInterval = 1 * time.Minute

// DefaultControlLoop runs a pid.Controller at a fixed sample time Ts.
// The execution period of every sample is measured and passed to the
// controller as Tx = elapsed / Ts.
type DefaultControlLoop struct {
	id                 string
	persistence        persistence.Persistence
	sensor             sensors.Sensor
	actuator           actuators.Actuator
	sampleTime         time.Duration
	txWindowSize       int
	checkpointInterval time.Duration
	clock              func() time.Time

	mu         sync.Mutex
	controller *pid.Controller
	command    Command
	txWindow   *rolling.PointPolicy
	lastCycle  time.Time
	// output to resume from with a tracking sample, set from persistence
	resume *float64

	y         float64
	tx        float64
	result    pid.Result
	samples   uint64
	errors    uint64
	lastError string
}

func NewControlLoop(
	config configuration.LoopConfig,
	persistence persistence.Persistence,
	sensor sensors.Sensor,
	actuator actuators.Actuator,
) (*DefaultControlLoop, error) {
	if config.SampleTime <= 0 {
		return nil, fmt.Errorf("loop %s: sampleTime must be > 0", config.ID)
	}
	controller, err := pid.NewController(config.Controller.ToParameters())
	if err != nil {
		return nil, fmt.Errorf("loop %s: %w", config.ID, err)
	}

	windowSize := max(config.TxWindowSize, 1)
	l := &DefaultControlLoop{
		id:                 config.ID,
		persistence:        persistence,
		sensor:             sensor,
		actuator:           actuator,
		sampleTime:         config.SampleTime,
		txWindowSize:       windowSize,
		checkpointInterval: DefaultCheckpointInterval,
		clock:              time.Now,
		controller:         controller,
		command:            NewCommand(config.Command),
	}
	l.txWindow = newTxWindow(windowSize)
	return l, nil
}

// newTxWindow creates a window of execution periods,
// prefilled with the nominal period.
func newTxWindow(size int) *rolling.PointPolicy {
	window := util.CreateRollingWindow(size)
	for i := 0; i < size; i++ {
		window.Append(1)
	}
	return window
}

func (l *DefaultControlLoop) GetId() string {
	return l.id
}

func (l *DefaultControlLoop) Run(ctx context.Context) error {
	l.restore()

	ui.Info("Starting control loop '%s' (Ts=%v)", l.id, l.sampleTime)

	var g run.Group
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			ticker := time.NewTicker(l.sampleTime)
			defer ticker.Stop()

			l.cycleAndLog()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					l.cycleAndLog()
				}
			}
		}, func(err error) {
			cancel()
		})
	}
	{
		// === periodic checkpoint of the applied output
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			ticker := time.NewTicker(l.checkpointInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := l.persist(); err != nil {
						ui.Warning("Unable to save snapshot of loop '%s': %v", l.id, err)
					}
				}
			}
		}, func(err error) {
			cancel()
		})
	}

	err := g.Run()

	ui.Info("Stopping control loop '%s'", l.id)
	if perr := l.persist(); perr != nil {
		ui.Warning("Unable to save snapshot of loop '%s': %v", l.id, perr)
	}
	return err
}

func (l *DefaultControlLoop) cycleAndLog() {
	if err := l.Cycle(); err != nil {
		ui.Error("Error in control loop '%s': %v", l.id, err)
	}
}

// restore loads the last applied output, the next automatic
// sample tracks it for a bumpless restart.
func (l *DefaultControlLoop) restore() {
	snapshot, err := l.persistence.LoadLoopSnapshot(l.id)
	if errors.Is(err, persistence.ErrNotFound) {
		ui.Debug("No persisted snapshot for loop '%s'", l.id)
		return
	}
	if err != nil {
		ui.Warning("Unable to load snapshot of loop '%s': %v", l.id, err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	u := snapshot.U
	l.resume = &u
	ui.Info("Resuming loop '%s' from output %v (saved %v)", l.id, u, snapshot.SavedAt.Format(time.RFC3339))
}

// persist saves the last applied output, if there is one
func (l *DefaultControlLoop) persist() error {
	l.mu.Lock()
	if l.samples == 0 {
		l.mu.Unlock()
		return nil
	}
	snapshot := persistence.LoopSnapshot{
		U:       l.result.U,
		Mode:    l.result.Mode,
		SavedAt: l.clock(),
	}
	l.mu.Unlock()

	return l.persistence.SaveLoopSnapshot(l.id, snapshot)
}

func (l *DefaultControlLoop) Cycle() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	tx := 1.0
	if !l.lastCycle.IsZero() {
		tx = float64(now.Sub(l.lastCycle)) / float64(l.sampleTime)
	}

	y, err := l.sensor.GetValue()
	if err != nil {
		return l.fail(fmt.Errorf("unable to read sensor: %w", err))
	}

	in := l.command.Input(y, tx)
	if l.resume != nil && in.Auto {
		in.Track = true
		in.UTrack = *l.resume
	}
	if err := in.Validate(); err != nil {
		// a clock step must not stall the loop
		l.lastCycle = now
		l.errors++
		l.lastError = err.Error()
		ui.Warning("Skipping sample of loop '%s': %v", l.id, err)
		return nil
	}

	result := l.controller.Step(in)
	l.lastCycle = now
	l.resume = nil
	l.txWindow.Append(tx)
	l.y = y
	l.tx = tx
	l.result = result
	l.samples++

	ui.Debug("Loop '%s': r=%v y=%v Tx=%.3f mode=%s u=%v", l.id, in.R, y, tx, result.Mode, result.U)

	if err := l.actuator.SetValue(result.U); err != nil {
		return l.fail(fmt.Errorf("unable to apply output: %w", err))
	}
	return nil
}

func (l *DefaultControlLoop) fail(err error) error {
	l.errors++
	l.lastError = err.Error()
	return err
}

func (l *DefaultControlLoop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	params := l.controller.Parameters()
	filter := l.controller.Filter()
	return Snapshot{
		ID:                l.id,
		Command:           l.command,
		Kp:                params.Kp,
		Ki:                params.Ki,
		Kd:                params.Kd,
		B:                 params.B,
		TfTs:              params.TfTs,
		UMin:              finiteOrNil(params.UMin),
		UMax:              finiteOrNil(params.UMax),
		Y:                 l.y,
		Tx:                l.tx,
		Result:            l.result,
		TxAvg:             util.GetWindowAvg(l.txWindow),
		TxMin:             util.GetWindowMin(l.txWindow),
		TxMax:             util.GetWindowMax(l.txWindow),
		Samples:           l.samples,
		Errors:            l.errors,
		Rediscretizations: filter.Rediscretizations(),
		LastError:         l.lastError,
		Resuming:          l.resume != nil,
	}
}

func finiteOrNil(value float64) *float64 {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return nil
	}
	return &value
}

func (l *DefaultControlLoop) GetCommand() Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.command
}

func (l *DefaultControlLoop) SetCommand(command Command) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.command = command
}

func (l *DefaultControlLoop) UpdateCommand(update CommandUpdate) Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.command = l.command.Apply(update)
	return l.command
}

func (l *DefaultControlLoop) Retune(kp, ki, kd float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.controller.SetGains(kp, ki, kd)
}

func (l *DefaultControlLoop) Reset() error {
	l.mu.Lock()
	l.controller.Reset()
	l.resume = nil
	l.lastCycle = time.Time{}
	l.txWindow = newTxWindow(l.txWindowSize)
	l.y = 0
	l.tx = 0
	l.result = pid.Result{}
	l.samples = 0
	l.errors = 0
	l.lastError = ""
	l.mu.Unlock()

	return l.persistence.DeleteLoopSnapshot(l.id)
}
