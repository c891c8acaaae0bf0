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

// ProbeContext is the read/write view a Probe evaluates against. It exposes
// exactly the App state the spec's probe contract depends on (§4.B),
// without handing probes the whole App.
type ProbeContext struct {
	Now       time.Time
	Status    Status
	StartedAt *time.Time // nil if the app never started
	ExitCode  *int       // nil if no exit has been observed

	// ReadyCheckedAt and LastResult are the probe's own period-gated state,
	// persisted on the App between ticks.
	ReadyCheckedAt *time.Time
	LastResult     *bool

	Logger *zerolog.Logger
}

// periodElapsed reports whether period has elapsed since ReadyCheckedAt, or
// true if the probe has never run.
func (c *ProbeContext) periodElapsed(period time.Duration) bool {
	if c.ReadyCheckedAt == nil || c.ReadyCheckedAt.IsZero() {
		return true
	}
	return c.Now.Sub(*c.ReadyCheckedAt) >= period
}

// Probe is a pure-ish "is it ready now?" predicate (spec §4.B). None and
// Delay are true predicates; Command and Http perform a synchronous,
// period-gated side effect and cache their last result.
type Probe interface {
	Ready(ctx *ProbeContext) bool
}

// NoneProbe is ready the instant the app is past Init (spec: "the app is
// considered ready the instant it enters RUNNING").
type NoneProbe struct{}

func (NoneProbe) Ready(ctx *ProbeContext) bool {
	return true
}

// DelayProbe is ready once Delay has elapsed since the app started.
type DelayProbe struct {
	Delay time.Duration
}

func (p DelayProbe) Ready(ctx *ProbeContext) bool {
	if ctx.StartedAt == nil {
		return false
	}
	return ctx.Now.Sub(*ctx.StartedAt) >= p.Delay
}

// ExitCodeProbe is ready iff the app has stopped with the configured exit code.
type ExitCodeProbe struct {
	ExitCode int
}

func (p ExitCodeProbe) Ready(ctx *ProbeContext) bool {
	if ctx.Status != StatusStopped {
		return false
	}
	if ctx.ExitCode == nil {
		return false
	}
	return *ctx.ExitCode == p.ExitCode
}
