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
	"os/exec"
	"time"
)

// CommandProbe runs Argv synchronously at most once per Period and is ready
// iff the last run exited 0. Grounded on
// original_source/src/readiness_probe/command.rs.
type CommandProbe struct {
	Argv   []string
	Period time.Duration
}

func (p CommandProbe) Ready(ctx *ProbeContext) bool {
	if !ctx.periodElapsed(p.Period) {
		return *ctx.LastResult
	}

	now := ctx.Now
	*ctx.ReadyCheckedAt = now

	ok := runCommandProbe(p.Argv)
	*ctx.LastResult = ok

	took := time.Since(now)
	if ctx.Logger != nil {
		ev := ctx.Logger.Debug()
		if !ok {
			ev = ctx.Logger.Warn()
		}
		ev.Strs("argv", p.Argv).Dur("probe_took_ms", took).Bool("ok", ok).Msg("command readiness probe")
	}

	return ok
}

func runCommandProbe(argv []string) bool {
	if len(argv) == 0 {
		return false
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return false
	}
	return cmd.ProcessState.Success()
}
