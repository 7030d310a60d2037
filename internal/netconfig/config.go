// Package netconfig loads replicore's runtime-tunable parameters from a
// YAML file and hot-reloads it on change.
package netconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime-tunable replication parameter, covering both
// the core's own recognized configuration table and this module's ambient
// additions (tick rate, rotation precision, bandwidth gate).
type Config struct {
	// TickRate is how many ticks per second the authoritative loop drives.
	TickRate int `yaml:"tick_rate"`
	// MaxHistorySize bounds the server's retained snapshot history
	// (`max_history`); raised to FullSnapThreshold+1 if it would not
	// exceed the threshold, per the core's enforced invariant.
	MaxHistorySize int `yaml:"max_history"`
	// MaxClientHistorySize is the client's retained prediction buffer bound
	// (`max_client_history`). Nothing in this module reads it:
	// replsync.NewClient takes its bound as an argument.
	MaxClientHistorySize int `yaml:"max_client_history"`
	// FullSnapThreshold is the non-acked-snapshot count past which the
	// outbound policy forces a full snapshot instead of a delta.
	FullSnapThreshold int `yaml:"full_snap_threshold"`
	// QuantizeAnalog enables 8-bit-over-[0,1] encoding for analog inputs.
	QuantizeAnalog bool `yaml:"quantize_analog"`
	// QuantizeAnalogBits is loaded from the file but read by nothing in this
	// module: the input codec always quantizes analog values to 8 bits.
	QuantizeAnalogBits uint `yaml:"quantize_analog_bits"`
	// UseMouseRelative includes relative mouse delta in input records.
	UseMouseRelative bool `yaml:"use_mouse_relative"`
	// UseMouseSpeed includes mouse speed in input records.
	UseMouseSpeed bool `yaml:"use_mouse_speed"`
	// BroadcastPing is loaded from the file but read by nothing in this
	// module; no ping is measured or echoed here.
	BroadcastPing bool `yaml:"broadcast_ping"`
	// RotationBits is loaded from the file but read by nothing in this
	// module; callers of the smallest-three rotation codec pass their bit
	// width directly.
	RotationBits uint `yaml:"rotation_bits"`
	// BandwidthBytesPerSec is the sustained per-peer outbound byte budget.
	BandwidthBytesPerSec float64 `yaml:"bandwidth_bytes_per_sec"`
	// BandwidthBurst is the per-peer burst allowance on top of the
	// sustained rate.
	BandwidthBurst int `yaml:"bandwidth_burst"`
}

// Default returns a Config with reasonable defaults for a small
// authoritative server.
func Default() Config {
	return Config{
		TickRate:              30,
		MaxHistorySize:        64,
		MaxClientHistorySize:  64,
		FullSnapThreshold:     8,
		QuantizeAnalog:        true,
		QuantizeAnalogBits:    8,
		UseMouseRelative:      false,
		UseMouseSpeed:         false,
		BroadcastPing:         false,
		RotationBits:          10,
		BandwidthBytesPerSec:  262144,
		BandwidthBurst:        65536,
	}
}

// Normalized returns a copy of cfg with max_history raised to
// full_snap_threshold+1 when it would not otherwise exceed it, per the
// core's enforced invariant for the history/threshold relationship.
func (c Config) Normalized() Config {
	if c.MaxHistorySize <= c.FullSnapThreshold {
		c.MaxHistorySize = c.FullSnapThreshold + 1
	}
	return c
}

// Load reads and parses a YAML config file, falling back to Default for
// any field the file leaves unset.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("netconfig: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("netconfig: parse %s: %w", path, err)
	}
	return cfg.Normalized(), nil
}
