// Package config loads the settings of a run from a JSON or YAML file. Every setting is optional;
// command-line flags take precedence over the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/launchdarkly/bdd-harness/framework/bdd"
	"github.com/launchdarkly/bdd-harness/framework/mock"
	"github.com/launchdarkly/bdd-harness/framework/opt"
)

// Config is the content of a configuration file.
type Config struct {
	AsyncTimeout       opt.Maybe[Duration] `json:"async_timeout"`
	Run                []string            `json:"run"`
	Skip               []string            `json:"skip"`
	JUnit              opt.Maybe[string]   `json:"junit"`
	VerifyFirstFailure opt.Maybe[bool]     `json:"verify_first_failure"`
	Color              opt.Maybe[bool]     `json:"color"`
	Debug              opt.Maybe[bool]     `json:"debug"`
}

// Duration is a time.Duration written as a string such as "250ms" or "5s". A negative duration
// disables the asynchronous timeout.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string such as \"5s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// Load reads a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("cannot read configuration file %q: %w", path, err)
	}
	config, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid configuration file %q: %w", path, err)
	}
	return config, nil
}

// Parse decodes JSON or YAML configuration data.
func Parse(data []byte) (Config, error) {
	var config Config
	if err := parseJSONOrYAML(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Filters compiles the run and skip patterns.
func (c Config) Filters() (bdd.RegexFilters, error) {
	var filters bdd.RegexFilters
	for _, s := range c.Run {
		if err := filters.MustMatch.Set(s); err != nil {
			return filters, fmt.Errorf("invalid run pattern %q: %w", s, err)
		}
	}
	for _, s := range c.Skip {
		if err := filters.MustNotMatch.Set(s); err != nil {
			return filters, fmt.Errorf("invalid skip pattern %q: %w", s, err)
		}
	}
	return filters, nil
}

// VerifyMode returns the mock verification mode the file selects.
func (c Config) VerifyMode() mock.VerifyMode {
	if c.VerifyFirstFailure.OrElse(false) {
		return mock.VerifyFirstFailure
	}
	return mock.VerifyAll
}

// Timeout returns the asynchronous timeout, or zero for the engine default.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.AsyncTimeout.OrElse(0))
}
