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
	"sort"

	"github.com/pkg/errors"
)

// ErrDuplicateName is returned by Registry.Register when an app with the
// same name is already registered (spec §5: names are unique).
var ErrDuplicateName = errors.New("an app with the same name is already registered")

// Registry is the name-keyed store of all declared apps plus the forward
// (dependencies) and reverse (dependents) indices the supervisor's gating
// rules query every tick. It is not safe for concurrent use; the supervisor
// loop is single-threaded by design (spec §4.F).
//
// Grounded on pkg/comp/registry.go's registration idiom, generalized from a
// slice scan to a name-keyed map, and on
// original_source/src/app/apps_map.rs for the dependents index.
type Registry struct {
	byName     map[string]*App
	order      []string // registration order, used for deterministic iteration
	dependents map[string][]string
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:     make(map[string]*App),
		dependents: make(map[string][]string),
	}
}

// Register adds app to the registry and indexes its dependency edges.
// Config validation (pkg/config) is expected to have already rejected
// unknown dependency names and duplicate names; Register still defends
// against the duplicate case.
func (r *Registry) Register(app *App) error {
	if _, exists := r.byName[app.Name()]; exists {
		return errors.Wrap(ErrDuplicateName, app.Name())
	}
	r.byName[app.Name()] = app
	r.order = append(r.order, app.Name())
	for _, dep := range app.Decl.DependsOn {
		r.dependents[dep] = append(r.dependents[dep], app.Name())
	}
	return nil
}

// Get looks up an app by name.
func (r *Registry) Get(name string) *App {
	return r.byName[name]
}

// Apps returns every registered app in registration order.
func (r *Registry) Apps() []*App {
	apps := make([]*App, len(r.order))
	for i, name := range r.order {
		apps[i] = r.byName[name]
	}
	return apps
}

// Names returns every registered app's name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DependenciesReady reports whether every app that name depends on is
// currently ready. An app with no declared dependencies is vacuously ready
// to start.
func (r *Registry) DependenciesReady(name string) bool {
	app := r.byName[name]
	if app == nil {
		return false
	}
	for _, dep := range app.Decl.DependsOn {
		depApp := r.byName[dep]
		if depApp == nil || !depApp.Ready() {
			return false
		}
	}
	return true
}

// DependentsTerminal reports whether every app that depends on name has
// reached a terminal status (Init or Stopped). An app nothing depends on is
// vacuously clear to stop.
func (r *Registry) DependentsTerminal(name string) bool {
	for _, dependent := range r.dependents[name] {
		depApp := r.byName[dependent]
		if depApp == nil {
			continue
		}
		if !depApp.Status().Terminal() {
			return false
		}
	}
	return true
}

// AllTerminal reports whether every registered app has reached a terminal
// status. Used by the supervisor's two-tick shutdown confirmation (spec
// §4.F).
func (r *Registry) AllTerminal() bool {
	for _, app := range r.byName {
		if !app.Status().Terminal() {
			return false
		}
	}
	return true
}
