// Package config defines the run configuration enumerated in §6
// and loads it from YAML or from a generic map (as produced by flag
// parsing), the way the operator-framework ecosystem decodes
// bundle/CSV metadata with mapstructure + yaml.v2.
package config

import (
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/operator-framework/lo-sat/pkg/formula"
)

// Config is the §6 "Configuration enumerated" list.
type Config struct {
	Mode            string `yaml:"mode" mapstructure:"mode"`
	SortBySize      bool   `yaml:"sort_by_size" mapstructure:"sort_by_size"`
	ThiefMethod     bool   `yaml:"thief_method" mapstructure:"thief_method"`
	ExitUponSolving bool   `yaml:"exit_upon_solving" mapstructure:"exit_upon_solving"`
	Threads         int    `yaml:"threads" mapstructure:"threads"`
}

// Default returns the implied defaults: NORMAL mode, no heuristics,
// run to exhaustion, auto thread count.
func Default() Config {
	return Config{Mode: "NORMAL", Threads: 0}
}

// ParsedMode parses the configured mode string.
func (c Config) ParsedMode() (formula.Mode, error) {
	m, ok := formula.ParseMode(c.Mode)
	if !ok {
		return 0, errors.Errorf("config: unknown mode %q", c.Mode)
	}
	return m, nil
}

// Validate rejects configurations §6/§7 consider malformed.
func (c Config) Validate() error {
	if _, ok := formula.ParseMode(c.Mode); !ok {
		return errors.Errorf("config: unknown mode %q", c.Mode)
	}
	if c.Threads < 0 {
		return errors.Errorf("config: threads must be >= 0, got %d", c.Threads)
	}
	return nil
}

// Load reads and unmarshals a YAML config file at path.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config file %s", path)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config file %s", path)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// FromMap decodes a generic map (e.g. flag values collected by cobra)
// into a Config, starting from Default() so unset keys keep their
// defaults.
func FromMap(values map[string]interface{}) (Config, error) {
	c := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, errors.Wrap(err, "building config decoder")
	}
	if err := decoder.Decode(values); err != nil {
		return Config{}, errors.Wrap(err, "decoding config values")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
