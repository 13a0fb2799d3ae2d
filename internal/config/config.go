// Package config loads ottobrew settings from a YAML or TOML file with
// environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/theme"
)

// Env var names read by ApplyEnv.
const (
	EnvConfigPath = "OTTOBREW_CONFIG"
	EnvTheme      = "OTTOBREW_THEME"
	EnvHistoryDB  = "OTTOBREW_DB"
	EnvLogLevel   = "OTTOBREW_LOG_LEVEL"
)

// Config aggregates runtime configuration.
type Config struct {
	Brew      BrewConfig     `yaml:"brew" toml:"brew"`
	Timer     TimerConfig    `yaml:"timer" toml:"timer"`
	Display   DisplayConfig  `yaml:"display" toml:"display"`
	Log       LogConfig      `yaml:"log" toml:"log"`
	Storage   StorageConfig  `yaml:"storage" toml:"storage"`
	Cocktails CocktailConfig `yaml:"cocktails" toml:"cocktails"`
	HTTP      HTTPConfig     `yaml:"http" toml:"http"`
	Audio     AudioConfig    `yaml:"audio" toml:"audio"`
}

// BrewConfig sets the starting plan and the pour waits.
type BrewConfig struct {
	DefaultVolume     float64       `yaml:"defaultVolume" toml:"default_volume"`
	Strong            bool          `yaml:"strong" toml:"strong"`
	AllowCustomVolume bool          `yaml:"allowCustomVolume" toml:"allow_custom_volume"`
	BloomWait         time.Duration `yaml:"bloomWait" toml:"bloom_wait"`
	PourWait          time.Duration `yaml:"pourWait" toml:"pour_wait"`
}

// TimerConfig tunes the background timer supervisor.
type TimerConfig struct {
	Tick           time.Duration `yaml:"tick" toml:"tick"`
	NotifyCooldown time.Duration `yaml:"notifyCooldown" toml:"notify_cooldown"`
	WatchInterval  time.Duration `yaml:"watchInterval" toml:"watch_interval"`
	IdleAfter      time.Duration `yaml:"idleAfter" toml:"idle_after"`
}

// DisplayConfig controls the terminal UI.
type DisplayConfig struct {
	Theme string `yaml:"theme" toml:"theme"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	File  string `yaml:"file" toml:"file"`
}

// StorageConfig points at the brew history database. Empty disables it.
type StorageConfig struct {
	HistoryDB string `yaml:"historyDb" toml:"history_db"`
}

// CocktailConfig optionally replaces the built-in catalog.
type CocktailConfig struct {
	File string `yaml:"file" toml:"file"`
}

// HTTPConfig controls the read-only API server.
type HTTPConfig struct {
	Address      string        `yaml:"address" toml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout" toml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout" toml:"write_timeout"`
}

// AudioConfig controls the chime and voice input.
type AudioConfig struct {
	Chime         bool   `yaml:"chime" toml:"chime"`
	ChimeFile     string `yaml:"chimeFile" toml:"chime_file"` // optional 16-bit mono WAV
	Voice         bool   `yaml:"voice" toml:"voice"`
	WhisperBin    string `yaml:"whisperBin" toml:"whisper_bin"`
	WhisperModel  string `yaml:"whisperModel" toml:"whisper_model"`
	RecordSeconds int    `yaml:"recordSeconds" toml:"record_seconds"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Brew: BrewConfig{
			DefaultVolume: brew.DefaultVolume,
			Strong:        brew.DefaultStrong,
			BloomWait:     brew.DefaultBloomWait,
			PourWait:      brew.DefaultPourWait,
		},
		Timer: TimerConfig{
			Tick:           time.Second,
			NotifyCooldown: 15 * time.Second,
			WatchInterval:  30 * time.Second,
			IdleAfter:      2 * time.Minute,
		},
		Display: DisplayConfig{Theme: theme.Dark.String()},
		Log:     LogConfig{Level: logger.LevelNormal.String(), File: ".ottobrew-logs/ottobrew.log"},
		Storage: StorageConfig{HistoryDB: ".ottobrew/history.db"},
		HTTP: HTTPConfig{
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Audio: AudioConfig{
			Chime:         true,
			WhisperBin:    "whisper-cli",
			WhisperModel:  "bin/ggml-small.bin",
			RecordSeconds: 2,
		},
	}
}

// Load reads path on top of the defaults. The decoder is picked by file
// extension: .yml/.yaml or .toml. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	default:
		return cfg, fmt.Errorf("config %s: unsupported extension (want .yaml or .toml)", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. getenv is
// os.Getenv in production.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvTheme); v != "" {
		c.Display.Theme = v
	}
	if v, ok := lookup(getenv, EnvHistoryDB); ok {
		c.Storage.HistoryDB = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// lookup treats the literal "off" as an explicit empty value.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	if v == "" {
		return "", false
	}
	if v == "off" {
		return "", true
	}
	return v, true
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if err := brew.ValidateVolume(c.Brew.DefaultVolume, c.Brew.AllowCustomVolume); err != nil {
		errs = append(errs, fmt.Errorf("brew.defaultVolume: %w", err))
	}
	if c.Brew.BloomWait < 0 || c.Brew.PourWait < 0 {
		errs = append(errs, errors.New("brew: waits must not be negative"))
	}
	if c.Timer.Tick <= 0 {
		errs = append(errs, errors.New("timer.tick must be positive"))
	}
	if _, err := theme.ParseScheme(c.Display.Theme); err != nil {
		errs = append(errs, fmt.Errorf("display.theme: %w", err))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Audio.Voice && c.Audio.RecordSeconds <= 0 {
		errs = append(errs, errors.New("audio.recordSeconds must be positive when voice is on"))
	}
	return errors.Join(errs...)
}

// Waits returns the stage waits as the brew package expects them.
func (c Config) Waits() brew.Waits {
	return brew.Waits{Bloom: c.Brew.BloomWait, Pour: c.Brew.PourWait}
}

// Scheme returns the configured scheme, falling back to dark.
func (c Config) Scheme() theme.Scheme {
	s, err := theme.ParseScheme(c.Display.Theme)
	if err != nil {
		return theme.Dark
	}
	return s
}
