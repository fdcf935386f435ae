// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Camera   CameraConfig   `toml:"camera"`
	Server   ServerConfig   `toml:"server"`
	Backends BackendsConfig `toml:"backends"`
	Plugins  PluginsConfig  `toml:"plugins"`
	Storage  StorageConfig  `toml:"storage"`
}

// CameraConfig maps camera and pipeline settings.
type CameraConfig struct {
	DeviceID          *int     `toml:"device-id"`
	ActivityThreshold *float64 `toml:"activity-threshold"`
}

// ServerConfig maps local HTTP server settings.
type ServerConfig struct {
	ListenAddr *string `toml:"listen-addr"`
}

// BackendsConfig maps remote backend settings.
type BackendsConfig struct {
	FacialURL    *string `toml:"facial-url"`
	AnalyticsURL *string `toml:"analytics-url"`
	TimeoutSec   *int    `toml:"timeout-sec"`
}

// PluginsConfig maps alert plugin settings.
type PluginsConfig struct {
	Dir *string `toml:"dir"`
}

// StorageConfig maps database settings.
type StorageConfig struct {
	DBPath *string `toml:"db-path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
