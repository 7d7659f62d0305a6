package internal

import (
	"fmt"
	"io/ioutil"

	"github.com/pelletier/go-toml"
)

const (
	DefaultMaxAddress = 65535
	// MinMaxAddress leaves room for the main frame and a few objects.
	MinMaxAddress   = 16
	DefaultMaxSteps = 10000000
)

// Config is the optional djc.toml file. Missing keys keep their defaults.
type Config struct {
	Compiler CompilerConfig `toml:"compiler"`
	Output   OutputConfig   `toml:"output"`
	Machine  MachineConfig  `toml:"machine"`
}

type CompilerConfig struct {
	LogLevel          string `toml:"log-level"`
	NatObjectWidening bool   `toml:"nat-object-widening"`
}

type OutputConfig struct {
	Path          string `toml:"path"`
	StripComments bool   `toml:"strip-comments"`
}

type MachineConfig struct {
	MaxAddress int `toml:"max-address"`
	MaxSteps   int `toml:"max-steps"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a TOML config file. An empty path gives the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(buff)
	if err != nil {
		return nil, fmt.Errorf("config %s: %v", path, err)
	}
	return cfg, nil
}

func ParseConfig(buff []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(buff, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Compiler.LogLevel == "" {
		cfg.Compiler.LogLevel = LogLevelVerboseName
	}
	if cfg.Machine.MaxAddress == 0 {
		cfg.Machine.MaxAddress = DefaultMaxAddress
	}
	if cfg.Machine.MaxSteps == 0 {
		cfg.Machine.MaxSteps = DefaultMaxSteps
	}
}

func (cfg *Config) validate() error {
	if _, ok := logLevels[cfg.Compiler.LogLevel]; !ok {
		return fmt.Errorf("unknown log-level %q", cfg.Compiler.LogLevel)
	}
	if cfg.Machine.MaxAddress < MinMaxAddress {
		return fmt.Errorf("max-address %d is too small", cfg.Machine.MaxAddress)
	}
	if cfg.Machine.MaxSteps < 0 {
		return fmt.Errorf("max-steps must not be negative")
	}
	return nil
}

func (cfg *Config) genOptions() GenOptions {
	return GenOptions{MaxAddress: cfg.Machine.MaxAddress, StripComments: cfg.Output.StripComments}
}
