// Package pyexec runs untrusted Python snippets in a subprocess with a
// wall-clock timeout. The process boundary is the only isolation; there
// is no memory or CPU sandboxing beyond it.
package pyexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single execution when no timeout is configured.
const DefaultTimeout = 3 * time.Second

// Result captures the outcome of one execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Runner executes Python source text.
type Runner interface {
	Run(ctx context.Context, source string) (Result, error)
}

// SubprocessRunner is a Runner that shells out to the system Python.
type SubprocessRunner struct {
	bin     string
	timeout time.Duration
}

// NewSubprocessRunner creates a [SubprocessRunner]. A non-positive
// timeout falls back to DefaultTimeout.
func NewSubprocessRunner(timeout time.Duration) *SubprocessRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SubprocessRunner{
		bin:     resolvePythonBin(),
		timeout: timeout,
	}
}

// resolvePythonBin prefers python3 but verifies it actually runs — on
// Windows the Microsoft Store registers a python3.exe stub that just
// prints "Python was not found" and exits 9009.
func resolvePythonBin() string {
	if path, err := exec.LookPath("python3"); err == nil {
		cmd := exec.Command(path, "--version")
		if cmd.Run() == nil {
			return "python3"
		}
	}
	return "python"
}

func (r *SubprocessRunner) Run(ctx context.Context, source string) (Result, error) {
	tempFile, err := os.CreateTemp("", "podium-code-*.py")
	if err != nil {
		return Result{}, fmt.Errorf("pyexec: create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name()) //nolint:errcheck

	if _, err := tempFile.WriteString(source); err != nil {
		tempFile.Close() //nolint:errcheck
		return Result{}, fmt.Errorf("pyexec: write source: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return Result{}, fmt.Errorf("pyexec: close temp file: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, r.bin, tempFile.Name())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		// python binary missing, permission denied, and friends.
		return Result{}, fmt.Errorf("pyexec: run %s: %w", r.bin, err)
	}

	return result, nil
}

// Observation formats a Result as the text fed back into a dialogue.
// Execution failures become observations, never errors.
func Observation(res Result) string {
	if res.TimedOut {
		return "Execution took too long, aborting..."
	}
	if res.Stdout == "" {
		if res.Stderr != "" {
			return fmt.Sprintf("Error in execution: %s", res.Stderr)
		}
		return "(No output was generated. It is possible that you did not include a print statement in your code.)"
	}
	return res.Stdout
}
