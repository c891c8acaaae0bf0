/*
 * Copyright (c) 2019 OysterPack, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config is the configuration gateway (spec component G): it loads
// and validates maestro.yml into an immutable list of app declarations.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFilename = "maestro.yml"
	etcConfigDir   = "/etc/maestro"
)

// Config is the top-level document read from maestro.yml. Grounded on
// original_source/src/config/config.rs.
type Config struct {
	PIDFile     string      `yaml:"pid"`
	LogLevel    string      `yaml:"log_level"`
	MetricsPort uint        `yaml:"metrics_port"`
	Apps        []AppConfig `yaml:"apps"`
}

// Load reads maestro.yml from the current working directory, falling back
// to /etc/maestro/maestro.yml, and validates the result. Grounded on
// original_source/src/config/config.rs's Config::new, generalized from its
// panic-on-error behavior to returning an error.
func Load() (*Config, error) {
	data, err := readConfigFile()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readConfigFile implements the two-path search: ./maestro.yml first, then
// /etc/maestro/maestro.yml. It mirrors original_source/src/config/config.rs's
// File::open(&cwd_config_path).ok() semantics: any failure to open and read
// the cwd path (not just its absence - permission errors included) falls
// through to the /etc path, rather than gating the fallback on a preceding
// os.Stat.
func readConfigFile() ([]byte, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "get working directory")
	}

	cwdPath := filepath.Join(cwd, configFilename)
	if data, err := os.ReadFile(cwdPath); err == nil {
		return data, nil
	}

	etcPath := filepath.Join(etcConfigDir, configFilename)
	data, err := os.ReadFile(etcPath)
	if err != nil {
		return nil, errors.Errorf("config file not found, checked %s and %s", cwdPath, etcPath)
	}
	return data, nil
}
