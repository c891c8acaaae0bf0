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

// Command maestro is a single-host process supervisor: it launches declared
// child programs in dependency order, watches their readiness, and stops
// them in reverse order on signal or failure.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oysterpack/maestro/pkg/config"
	"github.com/oysterpack/maestro/pkg/logging"
	"github.com/oysterpack/maestro/pkg/maestro"
)

var metricsPort uint

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "maestro",
		Short: "maestro supervises a set of processes in dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSupervisor()
		},
	}

	root.PersistentFlags().UintVar(&metricsPort, "metrics-port", 0,
		"port to expose Prometheus metrics on, overriding metrics_port in maestro.yml (0 defers to config)")

	root.AddCommand(newValidateCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "load and validate maestro.yml without starting anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Printf("config OK: %d app(s) declared\n", len(cfg.Apps))
			return nil
		},
	}
}

func runSupervisor() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	overrides, err := logging.LoadEnvOverrides()
	if err != nil {
		return err
	}

	levelName := cfg.LogLevel
	if overrides.LogLevel != "" {
		levelName = overrides.LogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}

	runID := logging.NewRunID()
	logger := logging.NewLogger(runID, level)

	if err := config.WritePIDFile(cfg.PIDFile); err != nil {
		logger.Warn().Err(err).Msg("unable to write pid file")
	}

	registry := maestro.NewRegistry()
	for _, appCfg := range cfg.Apps {
		decl := maestro.Declaration{
			Name:      appCfg.Name,
			Argv:      appCfg.Command,
			Stdout:    stdioFromConfig(appCfg.Stdout),
			Stderr:    stdioFromConfig(appCfg.Stderr),
			Signal:    appCfg.Signal,
			UID:       appCfg.UID,
			DependsOn: appCfg.DependsOn,
			Ready:     probeFromConfig(appCfg.Ready),
		}
		app := maestro.NewApp(decl, maestro.SystemClock, logger)
		if err := registry.Register(app); err != nil {
			return err
		}
	}

	signals := maestro.NewSignalIntake()
	supervisor := maestro.NewSupervisor(registry, signals, logger, maestro.SystemClock)

	port := cfg.MetricsPort
	if metricsPort != 0 {
		port = metricsPort
	}
	if port != 0 {
		metrics := maestro.NewMetrics()
		metricsServer := maestro.NewMetricsServer(metrics, maestro.MetricsServerOpts{Port: port}, logger)
		metricsServer.Start()
		supervisor = supervisor.WithMetrics(metrics)
	}

	supervisor.Run()
	return nil
}

func stdioFromConfig(value string) maestro.Stdio {
	switch value {
	case "":
		return maestro.Discard
	case "inherit":
		return maestro.Stdio{Inherit: true}
	default:
		return maestro.Stdio{Path: value}
	}
}

func probeFromConfig(r config.ReadyConfig) maestro.Probe {
	switch r.Kind {
	case config.ProbeDelay:
		return maestro.DelayProbe{Delay: r.Delay()}
	case config.ProbeExitCode:
		return maestro.ExitCodeProbe{ExitCode: r.ExitCode}
	case config.ProbeCommand:
		return maestro.CommandProbe{Argv: r.Command, Period: r.Period()}
	case config.ProbeHttp:
		return maestro.HttpProbe{URL: r.URL, Method: r.Method, Period: r.Period()}
	default:
		return maestro.NoneProbe{}
	}
}
