package testingutils

import (
	"errors"
	"sync"
	"time"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/persistence"
)

// MockSensor returns the scripted values in order, repeating the last one
type MockSensor struct {
	ID     string
	Values []float64
	Err    error

	mu    sync.Mutex
	reads int
}

func (sensor *MockSensor) GetId() string {
	return sensor.ID
}

func (sensor *MockSensor) GetConfig() configuration.SensorConfig {
	return configuration.SensorConfig{
		File: &configuration.FileSensorConfig{Path: "/mock/" + sensor.ID},
	}
}

func (sensor *MockSensor) GetValue() (float64, error) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()

	if sensor.Err != nil {
		return 0, sensor.Err
	}
	if len(sensor.Values) == 0 {
		return 0, errors.New("mock sensor has no values")
	}
	index := min(sensor.reads, len(sensor.Values)-1)
	sensor.reads++
	return sensor.Values[index], nil
}

func (sensor *MockSensor) Reads() int {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.reads
}

// MockActuator records every applied value
type MockActuator struct {
	ID  string
	Err error

	mu      sync.Mutex
	Applied []float64
}

func (actuator *MockActuator) GetId() string {
	return actuator.ID
}

func (actuator *MockActuator) GetConfig() configuration.OutputConfig {
	return configuration.OutputConfig{
		File: &configuration.FileOutputConfig{Path: "/mock/" + actuator.ID},
	}
}

func (actuator *MockActuator) SetValue(value float64) error {
	actuator.mu.Lock()
	defer actuator.mu.Unlock()

	if actuator.Err != nil {
		return actuator.Err
	}
	actuator.Applied = append(actuator.Applied, value)
	return nil
}

func (actuator *MockActuator) GetValue() float64 {
	actuator.mu.Lock()
	defer actuator.mu.Unlock()

	if len(actuator.Applied) == 0 {
		return 0
	}
	return actuator.Applied[len(actuator.Applied)-1]
}

func (actuator *MockActuator) Values() []float64 {
	actuator.mu.Lock()
	defer actuator.mu.Unlock()
	return append([]float64{}, actuator.Applied...)
}

// MemoryPersistence keeps loop snapshots in memory
type MemoryPersistence struct {
	mu        sync.Mutex
	Snapshots map[string]persistence.LoopSnapshot
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		Snapshots: map[string]persistence.LoopSnapshot{},
	}
}

func (p *MemoryPersistence) Init() error {
	return nil
}

func (p *MemoryPersistence) LoadLoopSnapshot(loopId string) (persistence.LoopSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot, ok := p.Snapshots[loopId]
	if !ok {
		return snapshot, persistence.ErrNotFound
	}
	return snapshot, nil
}

func (p *MemoryPersistence) SaveLoopSnapshot(loopId string, snapshot persistence.LoopSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Snapshots[loopId] = snapshot
	return nil
}

func (p *MemoryPersistence) DeleteLoopSnapshot(loopId string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.Snapshots, loopId)
	return nil
}

// FakeClock is a manually advanced clock
type FakeClock struct {
	mu      sync.Mutex
	Current time.Time
}

func NewFakeClock() *FakeClock {
	return &FakeClock{
		Current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Current
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Current = c.Current.Add(d)
}

// CreateLoopConfig returns a valid PI loop configuration with file I/O
func CreateLoopConfig(id string) configuration.LoopConfig {
	uMin := 0.0
	uMax := 100.0
	return configuration.LoopConfig{
		ID:           id,
		SampleTime:   time.Second,
		TxWindowSize: 4,
		Controller: configuration.ControllerConfig{
			Kp:   1,
			Ki:   0.5,
			UMin: &uMin,
			UMax: &uMax,
		},
		Command: configuration.CommandConfig{
			R: 1,
		},
		Sensor: configuration.SensorConfig{
			File: &configuration.FileSensorConfig{Path: "/mock/" + id + "/y"},
		},
		Output: configuration.OutputConfig{
			File: &configuration.FileOutputConfig{Path: "/mock/" + id + "/u"},
		},
	}
}
