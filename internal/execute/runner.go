// Package execute runs external check tools, capturing their output and
// killing the whole process tree on cancellation.
package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/go-checkup/checkup/internal/diagnostics"
)

// Invocation describes one external tool run.
type Invocation struct {
	// Tool is the resolved path of the binary to run.
	Tool string
	Args []string
	// Dir is the working directory the tool runs in; relative paths in
	// its output are resolved against it.
	Dir string
	// Env holds extra environment variables layered over the inherited
	// environment.
	Env map[string]string
	// UseStdErr marks tools that report their diagnostics on stderr
	// rather than stdout.
	UseStdErr bool
}

// Output returns the stream the tool reports diagnostics on.
func (inv Invocation) Output(res Result) string {
	if inv.UseStdErr {
		return res.Stderr
	}
	return res.Stdout
}

// Result carries the captured output of a completed tool run.
type Result struct {
	Stdout string
	Stderr string
	// ExitErr is set when the tool ran to completion with a non-zero
	// exit status. Many check tools exit non-zero whenever they find
	// something, so this is not an error by itself.
	ExitErr error
	// Canceled marks a run that was terminated before completion. The
	// captured output covers whatever arrived before termination.
	Canceled bool
}

// ExitCode returns the tool's exit status: 0 for success, -1 when the
// tool did not run to completion.
func (r Result) ExitCode() int {
	if r.ExitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(r.ExitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Runner executes tool invocations. A single Runner is shared by all
// concurrent runs; every run owns its own process and output buffers.
type Runner struct {
	logger  hclog.Logger
	timeout time.Duration
}

// NewRunner creates a Runner. A non-zero timeout bounds every run on
// top of whatever deadline the caller's context already carries.
func NewRunner(logger hclog.Logger, timeout time.Duration) *Runner {
	return &Runner{
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the invocation and blocks until the tool exits or ctx is
// done. On cancellation the tool's whole process tree is killed and the
// run resolves with Canceled set, not an error. A binary that vanished
// between resolution and spawn resolves as an empty result: transient
// missing-tool conditions must not surface on every save.
func (r *Runner) Run(ctx context.Context, inv Invocation) (Result, error) {
	runID := uuid.New().String()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.Command(inv.Tool, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), renderEnv(inv.Env)...)
	}
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	stdoutLines := r.streamLog(runID, "stdout")
	stderrLines := r.streamLog(runID, "stderr")
	cmd.Stdout = io.MultiWriter(&stdout, stdoutLines)
	cmd.Stderr = io.MultiWriter(&stderr, stderrLines)

	r.logger.Debug("starting tool", "run_id", runID, "tool", inv.Tool, "args", inv.Args, "dir", inv.Dir)

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("tool binary missing at spawn time", "run_id", runID, "tool", inv.Tool, "error", err)
			return Result{}, nil
		}
		return Result{}, fmt.Errorf("failed to start tool %q: %w", inv.Tool, err)
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		if err := killTree(cmd); err != nil {
			r.logger.Warn("failed to kill process tree", "run_id", runID, "pid", cmd.Process.Pid, "error", err)
		}
		<-waitErr
		stdoutLines.Flush()
		stderrLines.Flush()
		r.logger.Debug("tool run canceled", "run_id", runID, "tool", inv.Tool, "cause", ctx.Err())
		return Result{Stdout: stdout.String(), Stderr: stderr.String(), Canceled: true}, nil

	case err := <-waitErr:
		stdoutLines.Flush()
		stderrLines.Flush()
		res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return Result{}, fmt.Errorf("tool %q did not run to completion: %w", inv.Tool, err)
			}
			res.ExitErr = exitErr
		}
		r.logger.Debug("tool finished", "run_id", runID, "tool", inv.Tool, "exit_code", res.ExitCode())
		return res, nil
	}
}

// streamLog mirrors one output stream into the debug log line by line
// as it arrives.
func (r *Runner) streamLog(runID, stream string) *diagnostics.LineBuffer {
	return diagnostics.NewLineBuffer(func(line string) {
		r.logger.Debug("tool output", "run_id", runID, "stream", stream, "line", line)
	})
}

// renderEnv flattens the extra environment into KEY=VALUE pairs in a
// stable order.
func renderEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(env))
	for _, k := range keys {
		pairs = append(pairs, k+"="+env[k])
	}
	return pairs
}
