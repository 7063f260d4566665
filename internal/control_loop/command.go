package control_loop

import (
	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/pid"
)

// Command holds the supervisory inputs of a loop
type Command struct {
	R      float64        `json:"r"`
	Uff    float64        `json:"uff"`
	UMan   float64        `json:"uMan"`
	UTrack float64        `json:"uTrack"`
	Track  bool           `json:"track"`
	Auto   bool           `json:"auto"`
	Windup pid.WindupMode `json:"windup"`
}

func NewCommand(config configuration.CommandConfig) Command {
	return Command{
		R:      config.R,
		Uff:    config.Uff,
		UMan:   config.UMan,
		UTrack: config.UTrack,
		Track:  config.Track,
		Auto:   config.Auto.Get(),
		Windup: config.Windup,
	}
}

// Input combines the command with a measurement into a controller input
func (c Command) Input(y, tx float64) pid.Input {
	return pid.Input{
		R:      c.R,
		Y:      y,
		Uff:    c.Uff,
		UMan:   c.UMan,
		UTrack: c.UTrack,
		Tx:     tx,
		Track:  c.Track,
		Auto:   c.Auto,
		Windup: c.Windup,
	}
}

// CommandUpdate is a partial Command, nil fields are left unchanged
type CommandUpdate struct {
	R      *float64        `json:"r,omitempty"`
	Uff    *float64        `json:"uff,omitempty"`
	UMan   *float64        `json:"uMan,omitempty"`
	UTrack *float64        `json:"uTrack,omitempty"`
	Track  *bool           `json:"track,omitempty"`
	Auto   *bool           `json:"auto,omitempty"`
	Windup *pid.WindupMode `json:"windup,omitempty"`
}

func (c Command) Apply(update CommandUpdate) Command {
	if update.R != nil {
		c.R = *update.R
	}
	if update.Uff != nil {
		c.Uff = *update.Uff
	}
	if update.UMan != nil {
		c.UMan = *update.UMan
	}
	if update.UTrack != nil {
		c.UTrack = *update.UTrack
	}
	if update.Track != nil {
		c.Track = *update.Track
	}
	if update.Auto != nil {
		c.Auto = *update.Auto
	}
	if update.Windup != nil {
		c.Windup = *update.Windup
	}
	return c
}
