package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/islandtune/internal/tune"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Playback PlaybackConfig `toml:"playback"`
	MIDI     MIDIConfig     `toml:"midi"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// PlaybackConfig contains tune playback settings.
type PlaybackConfig struct {
	Duration   float64 `toml:"duration"`    // Base note length in seconds
	Volume     float64 `toml:"volume"`      // 0-1, passed through to the audio backend
	Verbose    bool    `toml:"verbose"`     // Echo notation before playing
	SampleRate int     `toml:"sample_rate"` // Audio output sample rate in Hz
}

// MIDIConfig contains MIDI rendering settings.
type MIDIConfig struct {
	BPM float64 `toml:"bpm"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads a TOML configuration file. Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks the playback and MIDI settings.
func (c *Config) Validate() error {
	if _, err := tune.ParseSeconds(c.Playback.Duration); err != nil {
		return fmt.Errorf("%w: playback.duration %w", ErrInvalidConfig, err)
	}
	if c.Playback.Volume < 0 || c.Playback.Volume > 1 {
		return fmt.Errorf("%w: playback.volume must be between 0 and 1, got %v", ErrInvalidConfig, c.Playback.Volume)
	}
	if c.Playback.SampleRate <= 0 {
		return fmt.Errorf("%w: playback.sample_rate must be positive, got %d", ErrInvalidConfig, c.Playback.SampleRate)
	}
	if c.MIDI.BPM <= 0 {
		return fmt.Errorf("%w: midi.bpm must be positive, got %v", ErrInvalidConfig, c.MIDI.BPM)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
