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

import "github.com/pkg/errors"

// Sentinel errors surfaced by the process primitives in proc.go. Callers use
// errors.Is/errors.Cause to inspect the wrapped cause (spec §4.A: "these
// primitives surface errors verbatim to callers").
var (
	ErrEmptyCommand       = errors.New("empty command")
	ErrProcessNeverStarted = errors.New("process was never started")
)
