// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config handles the gozzy.toml settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lassandro/gozzy/pkg/log"
)

const (
	FileName        = "gozzy.toml"
	HistoryFileName = "history"
)

type Config struct {
	Log     LogConfig     `toml:"log"`
	Display DisplayConfig `toml:"display"`
	Debug   DebugConfig   `toml:"debug"`
}

type LogConfig struct {
	Level string `toml:"level"`

	// Comma separated module names, or "all".
	Modules string `toml:"modules"`
}

type DisplayConfig struct {
	// Columns to wrap text at; 0 asks the terminal.
	Width int `toml:"width"`
}

type DebugConfig struct {
	// Number of commands the debugger remembers; 0 turns history off.
	History int `toml:"history"`

	// Where history is kept. Empty means next to the default config file.
	HistoryFile string `toml:"history_file"`
}

func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		Display: DisplayConfig{Width: 0},
		Debug:   DebugConfig{History: 100},
	}
}

// DefaultPath is gozzy.toml in the user's configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()

	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "gozzy", FileName), nil
}

// Load reads the configuration at path over the defaults. With an empty
// path the default location is tried, and a missing file there is not an
// error.
func Load(path string) (*Config, error) {
	explicit := path != ""

	if !explicit {
		var err error

		if path, err = DefaultPath(); err != nil {
			return Default(), nil
		}
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)

	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))

		for i, key := range undecoded {
			keys[i] = key.String()
		}

		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// HistoryPath is the debugger history file, or "" when history is off or no
// location is known.
func (cfg *Config) HistoryPath() string {
	if cfg.Debug.History == 0 {
		return ""
	}

	if cfg.Debug.HistoryFile != "" {
		return cfg.Debug.HistoryFile
	}

	path, err := DefaultPath()

	if err != nil {
		return ""
	}

	return filepath.Join(filepath.Dir(path), HistoryFileName)
}

func (cfg *Config) Validate() error {
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}

	if cfg.Log.Modules != "" && cfg.Log.Modules != "all" {
		for _, module := range strings.Split(cfg.Log.Modules, ",") {
			if !known(strings.TrimSpace(module)) {
				return fmt.Errorf("unknown log module %q", module)
			}
		}
	}

	if cfg.Display.Width < 0 {
		return fmt.Errorf("display width %d is negative", cfg.Display.Width)
	}

	if cfg.Debug.History < 0 {
		return fmt.Errorf("debug history %d is negative", cfg.Debug.History)
	}

	return nil
}

func known(module string) bool {
	for _, m := range log.KnownModules {
		if m == module {
			return true
		}
	}

	return false
}
