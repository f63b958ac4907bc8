/*
 * runner.go, part of msmcells.
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// StageError is returned when an upstream tool fails. It carries the command
// line and everything the tool wrote.
type StageError struct {
	Stage   Stage
	Command []string
	Stdout  string
	Stderr  string
	Err     error
}

func (E *StageError) Error() string {
	msg := fmt.Sprintf("stage %s: %s: %v", E.Stage, strings.Join(E.Command, " "), E.Err)
	if s := strings.TrimSpace(E.Stdout); s != "" {
		msg += "\nstdout:\n" + s
	}
	if s := strings.TrimSpace(E.Stderr); s != "" {
		msg += "\nstderr:\n" + s
	}
	return msg
}

func (E *StageError) Unwrap() error { return E.Err }

// Runner executes upstream tools, saving their output streams to
// <logdir>/<stage>.out and <logdir>/<stage>.err.
type Runner struct {
	logdir string
	log    *slog.Logger
}

// NewRunner returns a Runner writing its stream files to logdir. An empty logdir
// disables the files.
func NewRunner(logdir string, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{logdir: logdir, log: log}
}

// Run executes command with args for the given stage, and waits for it to finish.
// A tool that can't be started, or exits with a non-zero status, gives a *StageError.
func (R *Runner) Run(ctx context.Context, stage Stage, command string, args ...string) error {
	argv := append([]string{command}, args...)
	R.log.Info("running stage", "stage", stage, "command", strings.Join(argv, " "))
	cmd := exec.CommandContext(ctx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	start := time.Now()
	err := cmd.Run()
	if werr := R.save(stage, stdout.Bytes(), stderr.Bytes()); werr != nil {
		R.log.Warn("could not save stage output", "stage", stage, "error", werr)
	}
	if err != nil {
		return &StageError{Stage: stage, Command: argv, Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
	}
	R.log.Info("stage done", "stage", stage, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func (R *Runner) save(stage Stage, stdout, stderr []byte) error {
	if R.logdir == "" {
		return nil
	}
	if err := os.MkdirAll(R.logdir, 0o755); err != nil {
		return err
	}
	base := filepath.Join(R.logdir, stage.String())
	if err := os.WriteFile(base+".out", stdout, 0o644); err != nil {
		return err
	}
	return os.WriteFile(base+".err", stderr, 0o644)
}
