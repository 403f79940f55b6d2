// Package config provides Viper-based configuration loading for the roomnet
// servers and client.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DiscoveryConfig locates the discovery service. For discoveryd it is the
// bind address; for room servers and clients it is where lookups are sent.
type DiscoveryConfig struct {
	// Host is the discovery service host.
	Host string `mapstructure:"host"`
	// Port is the well-known discovery service port.
	Port int `mapstructure:"port"`
}

// Addr returns the "host:port" address of the discovery service.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (d DiscoveryConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// RoomConfig holds room-server settings. The rooms themselves (description,
// items, neighbors) live in the world file; which room a process serves is
// selected on the command line.
type RoomConfig struct {
	// WorldFile is the path to the YAML world definition file.
	WorldFile string `mapstructure:"world_file"`
	// Host is the address a room server binds and advertises. Rooms bind an
	// ephemeral port on this host.
	Host string `mapstructure:"host"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Room      RoomConfig      `mapstructure:"room"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDiscovery(c.Discovery); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRoom(c.Room); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDiscovery(d DiscoveryConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "discovery.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("discovery.port must be 1-65535, got %d", d.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRoom(r RoomConfig) error {
	if r.Host == "" {
		return fmt.Errorf("room.host must not be empty")
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discovery.host", "localhost")
	v.SetDefault("discovery.port", 8888)

	v.SetDefault("room.world_file", "content/world.yaml")
	v.SetDefault("room.host", "127.0.0.1")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ROOMNET_ prefix
	v.SetEnvPrefix("ROOMNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns a validated configuration built entirely from defaults,
// for processes started without a config file.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("unmarshalling default config: %v", err))
	}
	return cfg
}
