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
	"testing"

	"github.com/oysterpack/maestro/pkg/maestro"
)

func newTestApp(name string, deps ...string) *maestro.App {
	decl := maestro.Declaration{Name: name, Argv: []string{"/bin/true"}, DependsOn: deps, Ready: maestro.NoneProbe{}}
	return maestro.NewApp(decl, maestro.SystemClock, testLogger())
}

func TestRegistry_RejectsDuplicateNames(t *testing.T) {
	r := maestro.NewRegistry()
	if err := r.Register(newTestApp("a")); err != nil {
		t.Fatalf("unexpected error registering a: %v", err)
	}
	if err := r.Register(newTestApp("a")); err == nil {
		t.Fatal("expected an error registering a duplicate name")
	}
}

func TestRegistry_DependenciesReady(t *testing.T) {
	r := maestro.NewRegistry()
	a := newTestApp("a")
	b := newTestApp("b", "a")

	_ = r.Register(a)
	_ = r.Register(b)

	if r.DependenciesReady("b") {
		t.Fatal("b's dependency a is not ready yet")
	}

	a.Run()
	a.Update()

	if !r.DependenciesReady("b") {
		t.Fatal("b's dependencies should be ready once a is ready")
	}
}

func TestRegistry_DependenciesReadyVacuouslyTrueWithNoDeps(t *testing.T) {
	r := maestro.NewRegistry()
	_ = r.Register(newTestApp("solo"))

	if !r.DependenciesReady("solo") {
		t.Fatal("an app with no dependencies should be vacuously ready to start")
	}
}

func TestRegistry_DependentsTerminal(t *testing.T) {
	r := maestro.NewRegistry()
	a := newTestApp("a")
	b := newTestApp("b", "a")
	_ = r.Register(a)
	_ = r.Register(b)

	if !r.DependentsTerminal("b") {
		t.Fatal("b has no dependents, so it should vacuously be clear to stop")
	}

	// a has dependent b, which starts at Init -- not terminal once it leaves Init
	// without stopping. Simulate by running b.
	b.Run()
	if r.DependentsTerminal("a") {
		t.Fatal("a should not be clear to stop while its dependent b is running")
	}
}

func TestRegistry_AllTerminal(t *testing.T) {
	r := maestro.NewRegistry()
	a := newTestApp("a")
	_ = r.Register(a)

	if !r.AllTerminal() {
		t.Fatal("a freshly registered app (status Init) should count as terminal")
	}
}
