// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-chdtoogg.
//
// go-chdtoogg is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-chdtoogg is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-chdtoogg.  If not, see <https://www.gnu.org/licenses/>.

// Package config loads chdtoogg settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ZaparooProject/go-chdtoogg/encode"
	"github.com/ZaparooProject/go-chdtoogg/encode/oggflac"
	"github.com/ZaparooProject/go-chdtoogg/logging"
)

// Environment variables.
const (
	EnvConfig   = "CHDTOOGG_CONFIG"
	EnvQuality  = "CHDTOOGG_QUALITY"
	EnvLogLevel = "CHDTOOGG_LOG_LEVEL"
)

// ErrInvalid is returned for settings that cannot be interpreted.
var ErrInvalid = errors.New("invalid configuration")

// Config holds application configuration.
type Config struct {
	Log         logging.Config `yaml:"log"`
	MetricsFile string         `yaml:"metrics_file"`
	Quality     int            `yaml:"quality"`
	// SelfTestCRC is the fingerprint the encoder self-test must reproduce;
	// 0 uses the result published by the encoder.
	SelfTestCRC    uint32 `yaml:"selftest_crc"`
	EmptyDataTrack bool   `yaml:"empty_data_track"`
	XML            bool   `yaml:"xml"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Quality:     encode.DefaultQuality,
		SelfTestCRC: oggflac.SelfTestResult,
		Log:         logging.DefaultConfig(),
	}
}

// configPaths returns the list of paths to search for config file.
func configPaths() []string {
	paths := []string{
		".chdtoogg.yaml",
		".chdtoogg.yml",
	}

	// Check home config dir
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "chdtoogg", "config.yaml"),
			filepath.Join(home, ".config", "chdtoogg", "config.yml"),
		)
	}

	return paths
}

// Load loads configuration from file or returns defaults.
// Priority: explicit path > env CHDTOOGG_CONFIG > search paths > defaults.
// Environment overrides are applied on top of whichever file was read.
// Values are not range-checked until Normalize.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, err
		}
	} else {
		for _, candidate := range configPaths() {
			if _, err := os.Stat(candidate); err == nil {
				if err := cfg.loadFromFile(candidate); err != nil {
					return nil, err
				}
				break
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if quality := os.Getenv(EnvQuality); quality != "" {
		q, err := strconv.Atoi(quality)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvQuality, quality)
		}
		c.Quality = q
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	return nil
}

// Normalize clamps settings into their allowed ranges and describes every
// value it changed.
func (c *Config) Normalize() []string {
	var changed []string
	if q := encode.ClampQuality(c.Quality); q != c.Quality {
		changed = append(changed, fmt.Sprintf("quality %d clamped to %d", c.Quality, q))
		c.Quality = q
	}
	return changed
}
