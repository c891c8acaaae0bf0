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

package config

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProbeKind discriminates which readiness probe an app declares. Grounded on
// original_source/src/config/config_readiness_probe.rs's untagged enum;
// serde's untagged matching is reimplemented here as shape-based detection
// over the decoded YAML fields, since yaml.v3 has no built-in untagged-enum
// support.
type ProbeKind uint8

const (
	ProbeNone ProbeKind = iota
	ProbeDelay
	ProbeExitCode
	ProbeCommand
	ProbeHttp
)

const defaultProbePeriodMillis = 1000

// ReadyConfig is the YAML-level representation of one app's readiness
// probe declaration, covering all four kinds plus the implicit None default.
type ReadyConfig struct {
	Kind ProbeKind

	DelayMillis int
	ExitCode    int
	Command     []string
	URL         string
	Method      string
	PeriodMillis int
}

// probeShape is the raw field set a ready block can contain; exactly one
// discriminating combination of fields being present selects the ProbeKind.
type probeShape struct {
	Delay    *int     `yaml:"delay"`
	ExitCode *int     `yaml:"exit_code"`
	Command  []string `yaml:"command"`
	URL      *string  `yaml:"url"`
	Method   string   `yaml:"method"`
	Period   *int     `yaml:"period"`
}

// UnmarshalYAML implements yaml.Unmarshaler, dispatching on which fields are
// present the way serde's #[serde(untagged)] would: each ConfigReadinessProbe
// variant has a distinct required field (delay / exit_code / command / url).
func (r *ReadyConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || value.Tag == "!!null" {
		r.Kind = ProbeNone
		return nil
	}

	var shape probeShape
	if err := value.Decode(&shape); err != nil {
		return errors.Wrap(err, "decode ready block")
	}

	switch {
	case shape.Delay != nil:
		r.Kind = ProbeDelay
		r.DelayMillis = *shape.Delay
	case shape.ExitCode != nil:
		r.Kind = ProbeExitCode
		r.ExitCode = *shape.ExitCode
	case len(shape.Command) > 0:
		r.Kind = ProbeCommand
		r.Command = shape.Command
		r.PeriodMillis = orDefault(shape.Period, defaultProbePeriodMillis)
	case shape.URL != nil:
		r.Kind = ProbeHttp
		r.URL = *shape.URL
		r.Method = shape.Method
		if r.Method == "" {
			r.Method = "GET"
		}
		r.PeriodMillis = orDefault(shape.Period, defaultProbePeriodMillis)
	default:
		return errors.New("ready block must specify one of: delay, exit_code, command, url")
	}

	return nil
}

func orDefault(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// Period returns the probe's poll period as a time.Duration. Zero for kinds
// that aren't period-gated.
func (r ReadyConfig) Period() time.Duration {
	return time.Duration(r.PeriodMillis) * time.Millisecond
}

// Delay returns the Delay probe's wait duration.
func (r ReadyConfig) Delay() time.Duration {
	return time.Duration(r.DelayMillis) * time.Millisecond
}
