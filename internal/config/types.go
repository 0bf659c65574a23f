package config

import (
	"time"

	"github.com/rileyhilliard/pingraph/internal/target"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Defaults for values that are not mode dependent.
const (
	DefaultBuffer       = 30
	DefaultRestartDelay = time.Second
)

// Config represents the complete .pingraph.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Targets are hosts to ping, or shell commands when Cmd is set.
	Targets []string `yaml:"targets" mapstructure:"targets"`
	Cmd     bool     `yaml:"cmd" mapstructure:"cmd"`

	// WatchInterval is the time between pings in seconds. Zero picks the
	// default for the mode.
	WatchInterval float64 `yaml:"watch_interval,omitempty" mapstructure:"watch_interval"`

	// Buffer is the length of the graph window in seconds.
	Buffer int `yaml:"buffer" mapstructure:"buffer"`

	IPv4      bool   `yaml:"ipv4,omitempty" mapstructure:"ipv4"`
	IPv6      bool   `yaml:"ipv6,omitempty" mapstructure:"ipv6"`
	Interface string `yaml:"interface,omitempty" mapstructure:"interface"`

	// Via is an SSH host alias. When set, ping runs on that host.
	Via string `yaml:"via,omitempty" mapstructure:"via"`

	// Colors are applied to targets in order: #RRGGBB or an ANSI code 0-255.
	Colors         []string `yaml:"colors,omitempty" mapstructure:"colors"`
	SimpleGraphics bool     `yaml:"simple_graphics,omitempty" mapstructure:"simple_graphics"`

	Restart   RestartConfig `yaml:"restart,omitempty" mapstructure:"restart"`
	Log       LogConfig     `yaml:"log,omitempty" mapstructure:"log"`
	ExportDir string        `yaml:"export_dir,omitempty" mapstructure:"export_dir"`
}

// RestartConfig controls reopening a ping process after it exits.
type RestartConfig struct {
	// Max is how many times a target is restarted. Zero disables restarts.
	Max int `yaml:"max" mapstructure:"max"`

	// Delay is the wait before each restart.
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`
}

// LogConfig controls the log file.
type LogConfig struct {
	// File is the log path. Empty uses the user cache directory.
	File  string `yaml:"file,omitempty" mapstructure:"file"`
	Debug bool   `yaml:"debug,omitempty" mapstructure:"debug"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Buffer:  DefaultBuffer,
		Restart: RestartConfig{
			Delay: DefaultRestartDelay,
		},
	}
}

// Interval returns the watch interval, or zero when the mode default applies.
func (c *Config) Interval() time.Duration {
	if c.WatchInterval <= 0 {
		return 0
	}
	return time.Duration(c.WatchInterval * float64(time.Second))
}

// BufferDuration returns the graph window length.
func (c *Config) BufferDuration() time.Duration {
	return time.Duration(c.Buffer) * time.Second
}

// Family returns the address family preference.
func (c *Config) Family() target.Family {
	switch {
	case c.IPv4:
		return target.FamilyV4
	case c.IPv6:
		return target.FamilyV6
	default:
		return target.FamilyAny
	}
}
