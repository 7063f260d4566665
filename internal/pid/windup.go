package pid

import (
	"fmt"
	"strings"
)

// WindupMode signals which output limit(s) are currently active downstream
// of the controller, so integration towards that limit can be halted.
type WindupMode int

const (
	WindupNone WindupMode = iota
	WindupUpper
	WindupLower
	WindupBoth
)

var windupModeNames = map[WindupMode]string{
	WindupNone:  "none",
	WindupUpper: "upper",
	WindupLower: "lower",
	WindupBoth:  "both",
}

func (m WindupMode) String() string {
	if name, ok := windupModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("WindupMode(%d)", int(m))
}

// ParseWindupMode parses one of "none", "upper", "lower" or "both" (case-insensitive).
// An empty string is treated as "none".
func ParseWindupMode(s string) (WindupMode, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	if value == "" {
		return WindupNone, nil
	}
	for mode, name := range windupModeNames {
		if name == value {
			return mode, nil
		}
	}
	return WindupNone, fmt.Errorf("unknown windup mode: %q, use one of: none | upper | lower | both", s)
}

func (m WindupMode) MarshalText() ([]byte, error) {
	if _, ok := windupModeNames[m]; !ok {
		return nil, fmt.Errorf("invalid windup mode: %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *WindupMode) UnmarshalText(text []byte) error {
	mode, err := ParseWindupMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// AntiWindup restricts the integral increment dui so that it does not push
// the control signal further into an active saturation limit.
// With WindupBoth the increment is always exactly zero.
func AntiWindup(dui float64, mode WindupMode) float64 {
	if mode == WindupLower || mode == WindupBoth {
		dui = max(dui, 0)
	}
	if mode == WindupUpper || mode == WindupBoth {
		dui = min(dui, 0)
	}
	return dui
}
