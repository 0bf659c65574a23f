package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/rileyhilliard/pingraph/internal/errors"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const (
	// maxSamples bounds buffer/watch_interval, the history kept per target.
	maxSamples = 100_000
	// minDefaultInterval is the fastest interval used when none is set.
	minDefaultInterval = 200 * time.Millisecond
)

// Validate checks a merged config (file plus flags) and reports every
// problem at once.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but pingraph only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest pingraph release.")
	}

	var err error
	if len(cfg.Targets) == 0 {
		err = multierr.Append(err, fmt.Errorf("no targets given"))
	}
	for i, t := range cfg.Targets {
		if strings.TrimSpace(t) == "" {
			err = multierr.Append(err, fmt.Errorf("target %d is empty", i+1))
		}
	}
	if cfg.IPv4 && cfg.IPv6 {
		err = multierr.Append(err, fmt.Errorf("ipv4 and ipv6 can't both be set"))
	}
	if cfg.WatchInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("watch interval must be positive, got %g", cfg.WatchInterval))
	}
	if cfg.Buffer < 1 {
		err = multierr.Append(err, fmt.Errorf("buffer must be at least 1 second, got %d", cfg.Buffer))
	} else if cfg.WatchInterval >= 0 {
		interval := cfg.Interval()
		if interval <= 0 {
			interval = minDefaultInterval
		}
		if samples := float64(cfg.BufferDuration()) / float64(interval); samples > maxSamples {
			err = multierr.Append(err, fmt.Errorf("buffer of %ds at a %s interval keeps %.0f samples per target, the limit is %d",
				cfg.Buffer, interval, samples, maxSamples))
		}
	}
	for _, c := range cfg.Colors {
		if cerr := ValidateColor(c); cerr != nil {
			err = multierr.Append(err, cerr)
		}
	}
	if cfg.Restart.Max < 0 {
		err = multierr.Append(err, fmt.Errorf("restart.max can't be negative"))
	}
	if cfg.Restart.Delay < 0 {
		err = multierr.Append(err, fmt.Errorf("restart.delay can't be negative"))
	}
	if cfg.Cmd && cfg.Via != "" {
		err = multierr.Append(err, fmt.Errorf("--via only applies to ping targets, not --cmd"))
	}

	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid configuration",
			"Check your flags and .pingraph.yaml.")
	}
	return nil
}

// ValidateColor accepts #RRGGBB or an ANSI palette index 0-255.
func ValidateColor(c string) error {
	if hexColor.MatchString(c) {
		return nil
	}
	if n, err := strconv.Atoi(c); err == nil && n >= 0 && n <= 255 {
		return nil
	}
	return fmt.Errorf("color %q is not #RRGGBB or 0-255", c)
}
