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

import "github.com/rs/zerolog"

// LogEvent names a structured log event. Name is reported under the "n"
// field; Level is the event's fixed log level.
type LogEvent struct {
	Name string
	zerolog.Level
}

// Log starts a log message for this event. The caller must call Msg/Msgf to
// send it.
func (e *LogEvent) Log(logger *zerolog.Logger) *zerolog.Event {
	return logger.WithLevel(e.Level).Str("n", e.Name)
}

// Supervisor and app lifecycle events.
var (
	AppStatusChanged = LogEvent{Name: "app.status_changed", Level: zerolog.InfoLevel}
	AppRunFailed     = LogEvent{Name: "app.run_failed", Level: zerolog.ErrorLevel}
	AppReady         = LogEvent{Name: "app.ready", Level: zerolog.InfoLevel}
	AppStopEscalated = LogEvent{Name: "app.stop_escalated", Level: zerolog.WarnLevel}

	SignalReceived = LogEvent{Name: "signal.received", Level: zerolog.InfoLevel}

	SupervisorStarting           = LogEvent{Name: "supervisor.starting", Level: zerolog.NoLevel}
	SupervisorShutdownInitiated  = LogEvent{Name: "supervisor.shutdown_initiated", Level: zerolog.NoLevel}
	SupervisorShutdownComplete   = LogEvent{Name: "supervisor.shutdown_complete", Level: zerolog.NoLevel}
)
