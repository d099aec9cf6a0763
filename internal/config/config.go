// Package config loads the server's JSON configuration file, in the
// teacher's own configs package style: a sync.Once-guarded loader over a
// package-level singleton, with defaults applied before unmarshalling.
package config

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

// Config holds everything the server needs beyond the four CLI positional
// arguments of spec.md section 6.3 (bind address, cert, key, db path).
type Config struct {
	Server struct {
		HTTPPort int    `json:"httpPort"` // metrics/admin port, internal/metrics
		LogLevel string `json:"logLevel"`
	} `json:"server"`

	Redis struct {
		Address  string `json:"address"` // empty disables the distributed IP tracker
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`

	Limits struct {
		PerIPMaxConnections int   `json:"perIPMaxConnections"`
		MaxFramePayload     int   `json:"maxFramePayload"`
		SearchResultCap     uint8 `json:"searchResultCap"`
	} `json:"limits"`

	SessionDefaults wire.SessionConfig `json:"sessionDefaults"`

	Room struct {
		IdleReapIntervalSeconds int `json:"idleReapIntervalSeconds"`
		IdleThresholdSeconds    int `json:"idleThresholdSeconds"`
	} `json:"room"`
}

var (
	once   sync.Once
	config *Config
	loadErr error
)

// Load reads and parses filePath, applying defaults first. Safe to call
// more than once; only the first call's result is kept.
func Load(filePath string) (*Config, error) {
	once.Do(func() {
		cfg := &Config{}
		setDefaults(cfg)

		file, err := os.ReadFile(filePath)
		if err != nil {
			loadErr = err
			return
		}
		if err := json.Unmarshal(file, cfg); err != nil {
			loadErr = err
			return
		}
		config = cfg
	})
	return config, loadErr
}

func setDefaults(cfg *Config) {
	cfg.Server.HTTPPort = 9090
	cfg.Server.LogLevel = "INFO"
	cfg.Limits.PerIPMaxConnections = 64
	cfg.Limits.MaxFramePayload = 20 * 1024 * 1024
	cfg.Limits.SearchResultCap = 20
	cfg.SessionDefaults = wire.SessionConfig{
		UndoRequestTimeoutSeconds: 30,
		UndoDialogueExtraSeconds:  15,
		PlayTimeoutSeconds:        120,
	}
	cfg.Room.IdleReapIntervalSeconds = 30
	cfg.Room.IdleThresholdSeconds = 60
}

// WriteExample writes a commented-free example config to filePath if one
// does not already exist there, mirroring the teacher's
// CreateExampleConfigFile.
func WriteExample(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return nil
	}
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Redis.Address = "localhost:6379"

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
