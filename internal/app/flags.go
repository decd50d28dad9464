package app

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"biosim/internal/sims/biosim"
)

// Config represents the command-line parameters of the viewer.
type Config struct {
	Sim            string
	ConfigPath     string
	Scale          int
	TPS            int
	YearsPerSecond int
	Seed           int64
	HUDWidth       int
	Overrides      Overrides
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "biosim", Scale: 32, TPS: 60, YearsPerSecond: 4, HUDWidth: 320, Overrides: Overrides{}}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "registered simulation to run")
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "YAML simulation config (defaults when empty)")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixels per island cell")
	fs.IntVar(&c.TPS, "tps", c.TPS, "frames per second")
	fs.IntVar(&c.YearsPerSecond, "yps", c.YearsPerSecond, "simulated years per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed override (0 keeps the config seed)")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "width of the parameter panel in pixels (0 hides it)")
	fs.Var(c.Overrides, "set", "override a parameter as key=value (repeatable)")
}

// Simulation loads the config file, if any, and applies the seed and
// overrides on top of it.
func (c *Config) Simulation() (biosim.Config, error) {
	cfg := biosim.DefaultConfig()
	if c.ConfigPath != "" {
		loaded, err := biosim.LoadConfig(c.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := cfg.Apply(c.Overrides); err != nil {
		return cfg, err
	}
	if c.Seed != 0 {
		cfg.Seed = c.Seed
	}
	return cfg, cfg.Validate()
}

// SimOptions flattens the config path, seed and overrides into the string
// map passed to a registered simulation factory.
func (c *Config) SimOptions() map[string]string {
	opts := make(map[string]string, len(c.Overrides)+2)
	for k, v := range c.Overrides {
		opts[k] = v
	}
	if c.ConfigPath != "" {
		opts[biosim.ConfigKey] = c.ConfigPath
	}
	if c.Seed != 0 {
		opts["seed"] = strconv.FormatInt(c.Seed, 10)
	}
	return opts
}

// Overrides collects repeated key=value flags.
type Overrides map[string]string

func (o Overrides) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

// Set parses one key=value pair.
func (o Overrides) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	o[key] = strings.TrimSpace(value)
	return nil
}
