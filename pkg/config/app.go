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
	"os/user"
	"strconv"
	"strings"
	"syscall"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
)

// AppConfig is one app entry in maestro.yml. Grounded on
// original_source/src/config/config_app.rs, with deserialize_and_get_uid and
// deserialize_signal reimplemented as custom yaml.Unmarshaler logic instead
// of shelling out to the "id" utility (Go resolves usernames with
// os/user directly).
type AppConfig struct {
	Name      string
	Command   []string
	Stdout    string
	Stderr    string
	Signal    int
	UID       uint32
	DependsOn []string
	Ready     ReadyConfig
}

// rawAppConfig mirrors the YAML document shape before uid/signal decoding.
type rawAppConfig struct {
	Name      string      `yaml:"name"`
	Command   []string    `yaml:"command"`
	Stdout    string      `yaml:"stdout"`
	Stderr    string      `yaml:"stderr"`
	Signal    yaml.Node   `yaml:"signal"`
	User      yaml.Node   `yaml:"user"`
	DependsOn []string    `yaml:"depends_on"`
	Ready     ReadyConfig `yaml:"ready"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *AppConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw rawAppConfig
	if err := value.Decode(&raw); err != nil {
		return errors.Wrap(err, "decode app entry")
	}

	a.Name = raw.Name
	a.Command = raw.Command
	a.Stdout = raw.Stdout
	a.Stderr = raw.Stderr
	a.DependsOn = raw.DependsOn
	a.Ready = raw.Ready

	signal, err := decodeSignal(&raw.Signal)
	if err != nil {
		return errors.Wrapf(err, "app %q: signal", raw.Name)
	}
	a.Signal = signal

	uid, err := decodeUID(&raw.User)
	if err != nil {
		if errors.Is(err, errDefaultUID) {
			a.UID = uint32(unix.Geteuid())
		} else {
			return errors.Wrapf(err, "app %q: user", raw.Name)
		}
	} else {
		a.UID = uid
	}

	return nil
}

// decodeSignal accepts a symbolic name (sigterm/term/sigint/int, case
// insensitive) or a numeric signal value. Absent node defaults to SIGTERM.
func decodeSignal(node *yaml.Node) (int, error) {
	if node == nil || node.Kind == 0 {
		return int(syscall.SIGTERM), nil
	}

	var raw string
	if err := node.Decode(&raw); err == nil && node.Tag != "!!int" {
		switch strings.ToLower(raw) {
		case "sigterm", "term":
			return int(syscall.SIGTERM), nil
		case "sigint", "int":
			return int(syscall.SIGINT), nil
		default:
			return 0, errors.Errorf("unknown signal name %q", raw)
		}
	}

	var num int
	if err := node.Decode(&num); err != nil {
		return 0, errors.New("signal must be a name or a number")
	}
	return num, nil
}

// decodeUID accepts a numeric uid, a numeric string, or a username resolved
// via os/user.Lookup. Absent node defaults to the supervisor's own effective
// uid, filled in by the caller: for a zero node decodeUID returns
// errDefaultUID and AppConfig.UnmarshalYAML substitutes the default.
func decodeUID(node *yaml.Node) (uint32, error) {
	if node == nil || node.Kind == 0 {
		return 0, errDefaultUID
	}

	if node.Tag == "!!int" {
		var num uint64
		if err := node.Decode(&num); err != nil {
			return 0, errors.New("uid must be a non-negative integer")
		}
		return uint32(num), nil
	}

	var raw string
	if err := node.Decode(&raw); err != nil {
		return 0, errors.New("user must be a string or a number")
	}
	if raw == "" {
		return 0, errors.New("user value is empty")
	}

	if unicode.IsDigit(rune(raw[0])) {
		num, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, errors.Wrapf(err, "unable to parse uid %q", raw)
		}
		return uint32(num), nil
	}

	u, err := user.Lookup(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to resolve uid for user %q", raw)
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected uid format for user %q", raw)
	}
	return uint32(uid), nil
}

// errDefaultUID is a sentinel decodeUID returns when the user field was
// absent; the loader substitutes the supervisor's own effective uid.
var errDefaultUID = errors.New("user field absent, use default")
