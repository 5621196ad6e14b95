package sim

import (
	"flag"
	"fmt"
)

// Config for a randomized simulation. When adding or removing fields,
// adjust DefaultConfig() and BindFlags() accordingly.
type Config struct {
	// Actors is the number of replicas.
	Actors int
	// Rounds is the number of random actions.
	Rounds int
	// Seed for the random action generator.
	Seed int64
	// LenHint bounds positions and lengths in actions. Zero means no bound.
	LenHint int
}

// DefaultConfig creates a new default config.
func DefaultConfig() Config {
	return Config{
		Actors:  5,
		Rounds:  1000,
		Seed:    1740,
		LenHint: 100,
	}
}

// BindFlags binds the flags to the given FlagSet, using the current values as defaults.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Actors, "actors", c.Actors, "Number of simulated replicas")
	fs.IntVar(&c.Rounds, "rounds", c.Rounds, "Number of random actions per simulation")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Seed for the random action generator")
	fs.IntVar(&c.LenHint, "len-hint", c.LenHint, "Upper bound for positions and lengths in actions, 0 for none")
}

// Validate checks that the config describes a runnable simulation.
func (c Config) Validate() error {
	if c.Actors < 1 {
		return fmt.Errorf("%w: need at least one actor, got %d", ErrInvalidConfig, c.Actors)
	}
	if c.Rounds < 0 {
		return fmt.Errorf("%w: negative rounds %d", ErrInvalidConfig, c.Rounds)
	}
	if c.LenHint < 0 {
		return fmt.Errorf("%w: negative length hint %d", ErrInvalidConfig, c.LenHint)
	}
	return nil
}
