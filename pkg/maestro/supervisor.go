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

package maestro

import (
	"time"

	"github.com/rs/zerolog"
)

// TickPeriod is the supervisor loop's polling period (spec §4.F).
const TickPeriod = 100 * time.Millisecond

// mode is the supervisor's global state, per spec §4.D/§4.F.
type mode uint8

const (
	modeRunning mode = iota
	modeStopping
)

// Supervisor runs the single-threaded polling loop described by spec §4.F:
// each tick it drains pending signals, advances every app exactly once, then
// applies start/stop gating against the dependency registry. Grounded on
// original_source/src/main.rs's Running/Stopping state machine, generalized
// from its unconditional break to the spec's two-tick terminal confirmation.
type Supervisor struct {
	registry *Registry
	signals  *SignalIntake
	logger   *zerolog.Logger
	clock    Clock
	metrics  *Metrics

	mode     mode
	stopFlag bool
}

// NewSupervisor wires a Registry, a SignalIntake and a logger into a runnable
// Supervisor. clock defaults to SystemClock if nil.
func NewSupervisor(registry *Registry, signals *SignalIntake, logger *zerolog.Logger, clock Clock) *Supervisor {
	if clock == nil {
		clock = SystemClock
	}
	return &Supervisor{
		registry: registry,
		signals:  signals,
		logger:   logger,
		clock:    clock,
		mode:     modeRunning,
	}
}

// WithMetrics attaches a Metrics collector that is refreshed once per tick.
// Optional: a Supervisor with no Metrics attached simply skips the observe
// step.
func (s *Supervisor) WithMetrics(m *Metrics) *Supervisor {
	s.metrics = m
	return s
}

// Run blocks until every app is terminal for two consecutive ticks, per the
// loop-exit rule in spec §4.F step 3.
func (s *Supervisor) Run() {
	SupervisorStarting.Log(s.logger).Msg("")

	for {
		s.tick()
		if s.checkTermination() {
			break
		}
		time.Sleep(TickPeriod)
	}

	s.signals.Stop()
	SupervisorShutdownComplete.Log(s.logger).Msg("")
}

// tick performs one iteration: drain signals, then advance every app exactly
// once, applying start/stop gating per the current mode.
func (s *Supervisor) tick() {
	for {
		sig, ok := s.signals.TryRecv()
		if !ok {
			break
		}
		SignalReceived.Log(s.logger).Str("signal", sig.String()).Msg("")
		s.enterStopping()
	}

	for _, app := range s.registry.Apps() {
		app.Update()

		switch s.mode {
		case modeRunning:
			s.applyRunningGate(app)
		case modeStopping:
			s.applyStoppingGate(app)
		}
	}

	if s.metrics != nil {
		s.metrics.Observe(s.registry.Apps())
	}
}

// applyRunningGate starts an Init app once its dependencies are all ready,
// and escalates to Stopping mode if an app just failed (spec §4.F step 2a).
func (s *Supervisor) applyRunningGate(app *App) {
	if app.Status() == StatusInit && s.registry.DependenciesReady(app.Name()) {
		app.Run()
	}

	if app.Status() == StatusStopped {
		code := app.ExitCode()
		if code == nil || *code != 0 {
			s.enterStopping()
		}
	}
}

// applyStoppingGate stops a Running app once every one of its dependents has
// reached a terminal status (spec §4.F step 2b).
func (s *Supervisor) applyStoppingGate(app *App) {
	if app.Status() == StatusRunning && s.registry.DependentsTerminal(app.Name()) {
		app.Stop()
	}
}

func (s *Supervisor) enterStopping() {
	if s.mode != modeStopping {
		s.mode = modeStopping
		SupervisorShutdownInitiated.Log(s.logger).Msg("")
	}
}

// checkTermination implements the two-tick terminal confirmation (spec §4.F
// step 3): exits only once every app has been observed terminal on two
// consecutive ticks, giving a just-stopped one-shot app's ExitCode probe one
// more tick to unblock a dependent before the loop exits.
func (s *Supervisor) checkTermination() bool {
	if !s.registry.AllTerminal() {
		s.stopFlag = false
		return false
	}
	if s.stopFlag {
		return true
	}
	s.stopFlag = true
	return false
}
