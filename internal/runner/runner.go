// Package runner executes external commands on behalf of the builder.
//
// Every build stage (source archiving, docker build/rm/create/cp) is a
// single synchronous child process. The child inherits the full caller
// environment and the caller's stdio, so its output streams live to the
// console; nothing is captured or parsed.
//
// Failures are reported uniformly as model.InstallerError values of kind
// KindCommand, whether the process exited non-zero or could never be
// launched. The message is the caller-supplied context followed by the
// failure detail.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/qemu-eos-builder/internal/model"
)

// Command is one external command invocation. It is built by the caller,
// run once, and discarded.
type Command struct {
	// Name is the executable to run, looked up in PATH unless it
	// contains a path separator.
	Name string

	// Args are the arguments passed after Name.
	Args []string

	// Dir is the working directory of the child process.
	// Empty means the current directory of the calling process.
	Dir string

	// ErrorContext prefixes the failure detail in the returned error,
	// e.g. "sudo docker build failed: ".
	ErrorContext string
}

// Argv returns Name followed by Args.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Name)
	return append(argv, c.Args...)
}

// String renders the command line for logging.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Runner executes commands. Implementations block until the command
// completes and return nil only on a zero exit status.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as real child processes via os/exec.
type ExecRunner struct {
	// Stdin, Stdout, and Stderr are attached to the child process.
	// NewExecRunner wires them to the calling process's stdio.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Logf, when set, receives a line describing each command before it runs.
	Logf func(format string, args ...any)
}

// NewExecRunner creates an ExecRunner attached to the process's stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts the command and waits for it to finish.
//
// The child environment is a copy of os.Environ(). There is no timeout and
// no retry; ctx cancellation (e.g. Ctrl-C) kills the child.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	if r.Logf != nil {
		if c.Dir != "" {
			r.Logf("Running %s (in %s)", c, c.Dir)
		} else {
			r.Logf("Running %s", c)
		}
	}

	// #nosec G204 -- commands are assembled internally from fixed names
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = os.Environ()
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return model.WrapInstallerError(model.KindCommand, c.ErrorContext+describeFailure(c, err), err)
	}
	return nil
}

// describeFailure renders the detail half of a command error message.
// A non-zero exit names the command line and status; anything else
// (executable not found, bad working directory) is the OS error text.
func describeFailure(c Command, err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("command '%s' returned non-zero exit status %d", c, exitErr.ExitCode())
	}
	return err.Error()
}

// ExitStatus extracts the child's exit status from an error returned by
// ExecRunner.Run. The boolean is false when the command never ran to
// completion (launch failure) or err did not come from a child process.
func ExitStatus(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

// Verify ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)
