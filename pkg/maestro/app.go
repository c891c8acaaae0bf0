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
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// Status is an App's position in the DAG described by spec §3 invariant 1:
// Init -> Running -> Stopping -> Stopped, and Init -> Stopped (spawn failure).
type Status uint8

const (
	StatusInit Status = iota
	StatusRunning
	StatusStopping
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "INIT"
	case StatusRunning:
		return "RUNNING"
	case StatusStopping:
		return "STOPPING"
	case StatusStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether this status counts as terminal for the
// supervisor's shutdown-confirmation check (spec §4.F step 3).
func (s Status) Terminal() bool {
	return s == StatusInit || s == StatusStopped
}

// Declaration is the immutable, validated input for one managed app (spec §3).
type Declaration struct {
	Name       string
	Argv       []string
	Stdout     Stdio
	Stderr     Stdio
	Signal     int
	UID        uint32
	DependsOn  []string
	Ready      Probe
}

// App is the mutable runtime record for one declared app (spec §3).
type App struct {
	Decl Declaration

	status   Status
	ready    bool
	cmd      *exec.Cmd
	pid      int
	exitCode *int

	startedAt      *time.Time
	updatedAt      time.Time
	readyCheckedAt time.Time
	lastProbe      bool

	logger *zerolog.Logger
	clock  Clock
}

// NewApp constructs an App in the Init status. clock supplies the initial
// UpdatedAt stamp and is kept for the timestamps Run and Update record.
func NewApp(decl Declaration, clock Clock, logger *zerolog.Logger) *App {
	appLogger := logger.With().Str("app", decl.Name).Logger()
	return &App{
		Decl:      decl,
		status:    StatusInit,
		updatedAt: clock(),
		logger:    &appLogger,
		clock:     clock,
	}
}

func (a *App) Name() string        { return a.Decl.Name }
func (a *App) Status() Status      { return a.status }
func (a *App) Ready() bool         { return a.ready }
func (a *App) ExitCode() *int      { return a.exitCode }
func (a *App) PID() int            { return a.pid }
func (a *App) UpdatedAt() time.Time { return a.updatedAt }

func (a *App) setStatus(s Status) {
	prev := a.status
	a.status = s
	if prev != s {
		AppStatusChanged.Log(a.logger).Str("from", prev.String()).Str("to", s.String()).Msg("")
	}
}

// Run spawns the child per §4.A/§4.C. No-op unless status = Init.
func (a *App) Run() {
	if a.status != StatusInit {
		return
	}

	result, err := Spawn(SpawnSpec{
		Argv:   a.Decl.Argv,
		UID:    a.Decl.UID,
		Stdout: a.Decl.Stdout,
		Stderr: a.Decl.Stderr,
	})
	if err != nil {
		AppRunFailed.Log(a.logger).Err(err).Msg("")
		a.setStatus(StatusStopped)
		return
	}

	if result.StdoutFallback {
		a.logger.Warn().Str("path", a.Decl.Stdout.Path).Msg("stdout redirection failed, falling back to discard")
	}
	if result.StderrFallback {
		a.logger.Warn().Str("path", a.Decl.Stderr.Path).Msg("stderr redirection failed, falling back to discard")
	}

	a.cmd = result.Cmd
	a.pid = result.PID
	now := a.clock()
	a.startedAt = &now
	a.setStatus(StatusRunning)
}

// Update reaps the child (if any) and then refreshes readiness. Ordering is
// load-bearing: reap must precede the readiness probe (spec §4.C).
func (a *App) Update() {
	now := a.clock()

	if a.status != StatusStopped && a.exitCode == nil && a.cmd != nil {
		exited, code, err := TryWait(a.cmd)
		if err != nil {
			a.logger.Error().Err(err).Msg("unable to reap child, forcing STOPPED")
			a.setStatus(StatusStopped)
		} else if exited {
			a.exitCode = code
			if code != nil {
				a.logger.Info().Int("exit_code", *code).Msg("app exited")
			} else {
				a.logger.Info().Msg("app exited (terminated by signal, no exit code)")
			}
			a.setStatus(StatusStopped)
		}
	}

	a.refreshReadiness(now)
	a.updatedAt = now
}

func (a *App) refreshReadiness(now time.Time) {
	if a.status == StatusInit || a.ready {
		return
	}

	ctx := &ProbeContext{
		Now:            now,
		Status:         a.status,
		StartedAt:      a.startedAt,
		ExitCode:       a.exitCode,
		ReadyCheckedAt: &a.readyCheckedAt,
		LastResult:     &a.lastProbe,
		Logger:         a.logger,
	}

	if a.Decl.Ready.Ready(ctx) {
		a.ready = true
		AppReady.Log(a.logger).Msg("")
	}
}

// Stop sends the configured signal to the child. No-op unless status =
// Running. On any failure to deliver the graceful signal, escalates to
// SIGKILL immediately (spec §4.C).
func (a *App) Stop() {
	if a.status != StatusRunning {
		return
	}

	if a.pid == 0 {
		a.logger.Warn().Msg("no pid available, escalating to SIGKILL")
		a.escalate()
		return
	}

	if err := Signal(a.pid, a.Decl.Signal); err != nil {
		AppStopEscalated.Log(a.logger).Err(err).Msg("")
		a.escalate()
		return
	}

	a.setStatus(StatusStopping)
}

func (a *App) escalate() {
	Kill(a.pid)
}
