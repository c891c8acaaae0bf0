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
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Stdio describes how a child's stdout/stderr stream should be wired up.
type Stdio struct {
	// Inherit passes the supervisor's own stream through to the child.
	Inherit bool
	// Path, if non-empty, is a file the stream is appended/truncated into.
	// Absent Inherit and Path means discard.
	Path string
}

// Discard is the zero-value Stdio: the stream is discarded.
var Discard = Stdio{}

// SpawnSpec describes everything needed to spawn one managed child.
type SpawnSpec struct {
	Argv   []string
	UID    uint32
	Stdout Stdio
	Stderr Stdio
}

// openStdio resolves a Stdio descriptor to an *os.File usable as a Cmd stream.
// File-open failures fall back to discard, per spec §4.C/§7 - the caller
// logs the fallback.
func openStdio(s Stdio) (*os.File, bool) {
	if s.Inherit {
		return nil, true
	}
	if s.Path == "" {
		return nil, false
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return nil, false
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, false
	}
	return f, true
}

// SpawnResult carries back what the caller needs to track a live child.
type SpawnResult struct {
	Cmd            *exec.Cmd
	PID            int
	StdoutFallback bool // true if stdout redirection fell back to discard
	StderrFallback bool // true if stderr redirection fell back to discard
}

// Spawn starts a child process per SpawnSpec: inherited environment, the
// configured uid, stdin discarded, stdout/stderr redirected per spec.
// Errors are surfaced verbatim; there are no retries (spec §4.A).
func Spawn(spec SpawnSpec) (*SpawnResult, error) {
	if len(spec.Argv) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Env = os.Environ()
	cmd.Stdin = nil // reads as /dev/null-equivalent

	result := &SpawnResult{Cmd: cmd}

	if stdout, ok := openStdio(spec.Stdout); ok && stdout != nil {
		cmd.Stdout = stdout
	} else if spec.Stdout.Inherit {
		cmd.Stdout = os.Stdout
	} else {
		if spec.Stdout.Path != "" {
			result.StdoutFallback = true
		}
		cmd.Stdout = nil
	}

	if stderr, ok := openStdio(spec.Stderr); ok && stderr != nil {
		cmd.Stderr = stderr
	} else if spec.Stderr.Inherit {
		cmd.Stderr = os.Stderr
	} else {
		if spec.Stderr.Path != "" {
			result.StderrFallback = true
		}
		cmd.Stderr = nil
	}

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{Uid: spec.UID, Gid: currentGid()},
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "spawn %q", spec.Argv[0])
	}

	result.PID = cmd.Process.Pid
	return result, nil
}

// currentGid returns the supervisor's own effective gid, used as the gid for
// every spawned child. Only the uid is configured per app; the child runs
// with the supervisor's gid, not the primary group of the configured uid.
func currentGid() uint32 {
	return uint32(unix.Getegid())
}

// EffectiveUID returns the supervisor's own effective uid, the default uid
// for an app declaration that does not specify one.
func EffectiveUID() uint32 {
	return uint32(unix.Geteuid())
}

// TryWait performs a non-blocking reap: it reports whether the child has
// exited and, if so, its exit code (absent if killed by signal).
func TryWait(cmd *exec.Cmd) (exited bool, exitCode *int, err error) {
	if cmd.Process == nil {
		return false, nil, ErrProcessNeverStarted
	}

	var status unix.WaitStatus
	pid, err := unix.Wait4(cmd.Process.Pid, &status, unix.WNOHANG, nil)
	if err != nil {
		return false, nil, errors.Wrap(err, "wait4")
	}
	if pid == 0 {
		return false, nil, nil
	}

	if status.Exited() {
		code := status.ExitStatus()
		return true, &code, nil
	}
	// terminated by signal: exited, but no exit code
	return true, nil, nil
}

// Signal sends sig to the process identified by pid.
func Signal(pid int, sig int) error {
	if err := unix.Kill(pid, unix.Signal(sig)); err != nil {
		return errors.Wrapf(err, "kill pid %d with signal %d", pid, sig)
	}
	return nil
}

// Kill sends SIGKILL to pid, ignoring the result (escalation is best-effort;
// the next tick's reap is authoritative either way).
func Kill(pid int) {
	_ = unix.Kill(pid, unix.SIGKILL)
}
