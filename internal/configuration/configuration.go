package configuration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix prefixes environment overrides, e.g. BIDSCORE_SERVER_ADDRESS.
const envPrefix = "BIDSCORE"

// AppConfig represents the complete application configuration.
type AppConfig struct {
	// Logger — logger component configuration
	Logger LoggerConfig `mapstructure:"logger"`
	// Server — HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
	// Scoring — templates, flag rules and report history
	Scoring ScoringConfig `mapstructure:"scoring"`
	// Journal — calculation audit journal
	Journal JournalConfig `mapstructure:"journal"`
}

// LoggerConfig defines logging settings.
type LoggerConfig struct {
	// Level — log level: debug, info, warn, warning, error.
	// Value is case-insensitive but checked in lowercase.
	Level string `mapstructure:"level"`
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	// Address — address and port where the server will listen (e.g., ":8080").
	Address string `mapstructure:"address"`
	// Static — path to directory with static files served by the server.
	// Can be empty if static serving is not required.
	Static string `mapstructure:"static"`
}

// ScoringConfig defines the rule sets and report storage.
type ScoringConfig struct {
	// Templates — YAML file with preset rule sets. Empty selects the built-in presets.
	Templates string `mapstructure:"templates"`
	// Flags — YAML file with CEL flag rules. Empty disables flags.
	Flags string `mapstructure:"flags"`
	// HistoryLength — maximum number of stored reports (default 1000).
	HistoryLength int `mapstructure:"history_length"`
	// HistoryTtl — lifetime of a stored report (default 24h).
	HistoryTtl time.Duration `mapstructure:"history_ttl"`
}

// JournalConfig defines the calculation journal.
type JournalConfig struct {
	// Journal file path (optional, empty disables the journal)
	File string `mapstructure:"file"`
	// Maximal journal file size in megabytes (default 100)
	Size int `mapstructure:"size"`
	// Number of rotated journal files (default 20)
	Amount int `mapstructure:"amount"`
}

// Validate checks the correctness of the entire application configuration
// and fills in defaults. Returns the first detected error.
func (c *AppConfig) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}

	if err := c.Server.Validate(); err != nil {
		return err
	}

	if err := c.Scoring.Validate(); err != nil {
		return err
	}

	if err := c.Journal.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate checks that the log level is set and is one of the supported
// values: debug, info, warn, warning, error (case-insensitive).
func (l *LoggerConfig) Validate() error {
	if l.Level == "" {
		return errors.New("logger.level: must be specified")
	}

	valid := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !valid[strings.ToLower(l.Level)] {
		return fmt.Errorf("logger.level: unsupported level '%s'", l.Level)
	}

	return nil
}

// Validate checks that the server address is set.
func (n *ServerConfig) Validate() error {
	if n.Address == "" {
		return errors.New("server.address: must be specified")
	}

	return nil
}

// Validate scoring parameters
func (s *ScoringConfig) Validate() error {
	if s.HistoryLength < 0 {
		return fmt.Errorf("scoring.history_length: must not be negative, got %d", s.HistoryLength)
	}
	if s.HistoryLength == 0 {
		s.HistoryLength = 1000
	}

	if s.HistoryTtl < 0 {
		return fmt.Errorf("scoring.history_ttl: must not be negative, got %s", s.HistoryTtl)
	}
	if s.HistoryTtl == 0 {
		s.HistoryTtl = 24 * time.Hour
	}

	return nil
}

// Validate journal parameters
func (j *JournalConfig) Validate() error {
	if j.Amount == 0 {
		j.Amount = 20
	}

	if j.Size == 0 {
		j.Size = 100
	}

	if j.Amount < 0 || j.Size < 0 {
		return errors.New("journal: size and amount must not be negative")
	}

	return nil
}

// LoadConfig loads configuration from the specified YAML file using Viper.
// Environment variables prefixed with BIDSCORE_ override file values, with
// dots in keys replaced by underscores (scoring.history_ttl is
// BIDSCORE_SCORING_HISTORY_TTL).
//
// Returns an error if the file is not found or inaccessible, has an invalid
// format, or one of the sections fails validation.
func LoadConfig(configPath string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
