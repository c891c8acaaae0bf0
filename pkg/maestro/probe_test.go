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

package maestro_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oysterpack/maestro/pkg/maestro"
)

func newProbeContext(now time.Time, status maestro.Status) *maestro.ProbeContext {
	var checkedAt time.Time
	var last bool
	return &maestro.ProbeContext{
		Now:            now,
		Status:         status,
		ReadyCheckedAt: &checkedAt,
		LastResult:     &last,
		Logger:         testLogger(),
	}
}

func TestNoneProbe_AlwaysReady(t *testing.T) {
	ctx := newProbeContext(time.Now(), maestro.StatusRunning)
	if !(maestro.NoneProbe{}).Ready(ctx) {
		t.Fatal("NoneProbe must always report ready")
	}
}

func TestDelayProbe_NotReadyUntilElapsed(t *testing.T) {
	start := time.Now()
	started := start
	ctx := newProbeContext(start, maestro.StatusRunning)
	ctx.StartedAt = &started

	probe := maestro.DelayProbe{Delay: 500 * time.Millisecond}

	if probe.Ready(ctx) {
		t.Fatal("delay probe should not be ready immediately")
	}

	ctx.Now = start.Add(500 * time.Millisecond)
	if !probe.Ready(ctx) {
		t.Fatal("delay probe should be ready once Delay has elapsed")
	}
}

func TestDelayProbe_ZeroDelayReadyImmediately(t *testing.T) {
	start := time.Now()
	ctx := newProbeContext(start, maestro.StatusRunning)
	ctx.StartedAt = &start

	probe := maestro.DelayProbe{Delay: 0}
	if !probe.Ready(ctx) {
		t.Fatal("zero-delay probe should be ready on the first tick after RUNNING")
	}
}

func TestExitCodeProbe(t *testing.T) {
	zero := 0
	nonzero := 1

	cases := []struct {
		name     string
		status   maestro.Status
		exitCode *int
		want     int
		ready    bool
	}{
		{"not stopped yet", maestro.StatusRunning, nil, 0, false},
		{"stopped with matching code", maestro.StatusStopped, &zero, 0, true},
		{"stopped with other code", maestro.StatusStopped, &nonzero, 0, false},
		{"stopped with no observed code", maestro.StatusStopped, nil, 0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := newProbeContext(time.Now(), c.status)
			ctx.ExitCode = c.exitCode
			probe := maestro.ExitCodeProbe{ExitCode: c.want}
			if got := probe.Ready(ctx); got != c.ready {
				t.Errorf("Ready() = %v, want %v", got, c.ready)
			}
		})
	}
}

func TestCommandProbe_PeriodGating(t *testing.T) {
	now := time.Now()
	ctx := newProbeContext(now, maestro.StatusRunning)

	probe := maestro.CommandProbe{Argv: []string{"/bin/true"}, Period: time.Minute}

	if !probe.Ready(ctx) {
		t.Fatal("expected /bin/true to report ready on first invocation")
	}

	// within the period window: must not re-invoke, must return cached result
	ctx.Now = now.Add(time.Second)
	probe2 := maestro.CommandProbe{Argv: []string{"/bin/false"}, Period: time.Minute}
	if !probe2.Ready(ctx) {
		t.Fatal("within the period window the cached (true) result must be returned, not a fresh invocation")
	}
}

func TestHttpProbe_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx := newProbeContext(time.Now(), maestro.StatusRunning)
	probe := maestro.HttpProbe{URL: server.URL, Method: http.MethodGet, Period: time.Minute}

	if !probe.Ready(ctx) {
		t.Fatal("expected 200 response to report ready")
	}
}

func TestHttpProbe_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx := newProbeContext(time.Now(), maestro.StatusRunning)
	probe := maestro.HttpProbe{URL: server.URL, Method: http.MethodGet, Period: time.Minute}

	if probe.Ready(ctx) {
		t.Fatal("expected 503 response to report not ready")
	}
}

func TestHttpProbe_ConnectionRefused(t *testing.T) {
	ctx := newProbeContext(time.Now(), maestro.StatusRunning)
	probe := maestro.HttpProbe{URL: "http://127.0.0.1:1", Method: http.MethodGet, Period: time.Minute}

	if probe.Ready(ctx) {
		t.Fatal("expected connection failure to report not ready")
	}
}
