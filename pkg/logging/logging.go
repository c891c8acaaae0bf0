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

// Package logging configures the supervisor's structured logger.
package logging

import (
	"crypto/rand"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/oklog/ulid"
	"github.com/rs/zerolog"
)

// ENV_PREFIX is the environment variable prefix used to override logging config.
const ENV_PREFIX = "MAESTRO"

// Standardized structured-log field names.
const (
	TIMESTAMP = "t"
	LEVEL     = "l"
	MESSAGE   = "m"
	ERROR     = "e"
	EVENT     = "n"
	RUN_ID    = "run_id"
)

// RunID uniquely identifies one supervisor process invocation.
// It is attached to every log line so that log lines from one run can be
// correlated, mirroring the teacher's per-process InstanceID.
type RunID ulid.ULID

func (id RunID) String() string {
	return ulid.ULID(id).String()
}

// NewRunID generates a fresh RunID.
func NewRunID() RunID {
	return RunID(ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader))
}

// EnvOverrides holds the env vars that are allowed to override file-based config.
type EnvOverrides struct {
	LogLevel   string `envconfig:"log_level"`
	ConfigPath string `envconfig:"config_path"`
}

// LoadEnvOverrides loads EnvOverrides from the process environment.
func LoadEnvOverrides() (EnvOverrides, error) {
	var overrides EnvOverrides
	err := envconfig.Process(ENV_PREFIX, &overrides)
	return overrides, err
}

// configureStandardFields applies the supervisor's standardized zerolog field names.
// Mirrors the teacher's ConfigureZerolog (pkg/app/logging.go).
func configureStandardFields() {
	zerolog.TimestampFieldName = TIMESTAMP
	zerolog.LevelFieldName = LEVEL
	zerolog.MessageFieldName = MESSAGE
	zerolog.ErrorFieldName = ERROR
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true
}

// NewLogger constructs the supervisor's root logger, writing to stderr, with
// the run ID attached to every event.
func NewLogger(runID RunID, level zerolog.Level) *zerolog.Logger {
	configureStandardFields()
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str(RUN_ID, runID.String()).
		Logger()
	return &logger
}

// ParseLevel resolves a log level name, defaulting to Info for an empty string.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(name)
}
