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

package config_test

import (
	"strings"
	"testing"

	"github.com/oysterpack/maestro/pkg/config"
)

func TestValidate_AcceptsValidConfig(t *testing.T) {
	cfg := &config.Config{
		Apps: []config.AppConfig{
			{Name: "a", Command: []string{"/bin/a"}, Ready: config.ReadyConfig{Kind: config.ProbeDelay}},
			{Name: "b", Command: []string{"/bin/b"}, DependsOn: []string{"a"}, Ready: config.ReadyConfig{Kind: config.ProbeNone}},
		},
	}

	if err := config.Validate(cfg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_RejectsDuplicateNames(t *testing.T) {
	cfg := &config.Config{
		Apps: []config.AppConfig{
			{Name: "a", Command: []string{"/bin/a"}},
			{Name: "a", Command: []string{"/bin/a2"}},
		},
	}
	err := config.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected a duplicate name error, got %v", err)
	}
}

func TestValidate_RejectsEmptyCommand(t *testing.T) {
	cfg := &config.Config{Apps: []config.AppConfig{{Name: "a"}}}
	err := config.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "command must not be empty") {
		t.Fatalf("expected an empty command error, got %v", err)
	}
}

func TestValidate_RejectsSelfDependency(t *testing.T) {
	cfg := &config.Config{
		Apps: []config.AppConfig{{Name: "a", Command: []string{"/bin/a"}, DependsOn: []string{"a"}}},
	}
	err := config.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "depends on itself") {
		t.Fatalf("expected a self-dependency error, got %v", err)
	}
}

func TestValidate_RejectsUnknownDependency(t *testing.T) {
	cfg := &config.Config{
		Apps: []config.AppConfig{{Name: "a", Command: []string{"/bin/a"}, DependsOn: []string{"ghost"}}},
	}
	err := config.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "unknown dependency") {
		t.Fatalf("expected an unknown dependency error, got %v", err)
	}
}

func TestValidate_RejectsDependencyWithNoReadinessProbe(t *testing.T) {
	cfg := &config.Config{
		Apps: []config.AppConfig{
			{Name: "a", Command: []string{"/bin/a"}, Ready: config.ReadyConfig{Kind: config.ProbeNone}},
			{Name: "b", Command: []string{"/bin/b"}, DependsOn: []string{"a"}},
		},
	}
	err := config.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "no readiness probe") {
		t.Fatalf("expected a missing-readiness-probe error, got %v", err)
	}
}

func TestValidate_DetectsCycle(t *testing.T) {
	cfg := &config.Config{
		Apps: []config.AppConfig{
			{Name: "a", Command: []string{"/bin/a"}, DependsOn: []string{"b"}, Ready: config.ReadyConfig{Kind: config.ProbeDelay}},
			{Name: "b", Command: []string{"/bin/b"}, DependsOn: []string{"a"}, Ready: config.ReadyConfig{Kind: config.ProbeDelay}},
		},
	}
	err := config.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected a dependency cycle error, got %v", err)
	}
}

func TestValidate_AggregatesMultipleErrors(t *testing.T) {
	cfg := &config.Config{
		Apps: []config.AppConfig{
			{Name: "a"},
			{Name: "a"},
		},
	}
	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "command must not be empty") || !strings.Contains(msg, "duplicate") {
		t.Fatalf("expected both violations to be reported in one aggregated error, got: %v", msg)
	}
}
