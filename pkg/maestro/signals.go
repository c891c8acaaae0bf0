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
	"os"
	"os/signal"
	"syscall"
)

// SignalIntake delivers SIGTERM/SIGINT from a dedicated goroutine to a
// buffered channel the supervisor loop drains non-blockingly each tick.
// Grounded on original_source/src/main.rs's signal_hook thread + mpsc
// channel, adapted to Go's os/signal.Notify.
type SignalIntake struct {
	ch chan os.Signal
}

// NewSignalIntake starts listening for SIGTERM and SIGINT immediately. The
// channel is buffered so a signal delivered between ticks is never lost.
func NewSignalIntake() *SignalIntake {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	return &SignalIntake{ch: ch}
}

// TryRecv returns the next pending signal, if any, without blocking.
func (s *SignalIntake) TryRecv() (os.Signal, bool) {
	select {
	case sig := <-s.ch:
		return sig, true
	default:
		return nil, false
	}
}

// Stop releases the underlying signal.Notify registration.
func (s *SignalIntake) Stop() {
	signal.Stop(s.ch)
}
