package dispatcher

import (
	"time"

	"github.com/dshills/simext/internal/host"
)

// Teardowner releases state held for a zone.
type Teardowner interface {
	Teardown() error
}

// Config holds dispatcher configuration options.
type Config struct {
	// Clock scales real time into game time for ZoneUpdate.
	Clock host.GameClock

	// Now returns the current real time.
	Now func() time.Time

	// Teardown runs after every zone teardown. Nil disables it.
	Teardown Teardowner
}

// DefaultConfig returns a configuration with a real-time clock.
func DefaultConfig() Config {
	return Config{
		Clock: realTime{},
		Now:   time.Now,
	}
}

// WithClock returns a copy of the config using clock.
func (c Config) WithClock(clock host.GameClock) Config {
	c.Clock = clock
	return c
}

// WithNow returns a copy of the config reading time from now.
func (c Config) WithNow(now func() time.Time) Config {
	c.Now = now
	return c
}

// WithTeardown returns a copy of the config tearing down t after zones.
func (c Config) WithTeardown(t Teardowner) Config {
	c.Teardown = t
	return c
}

// realTime is a clock that is never paused and runs at normal speed.
type realTime struct{}

func (realTime) SpeedMultiplier() float64 { return 1 }
func (realTime) IsPaused() bool           { return false }
