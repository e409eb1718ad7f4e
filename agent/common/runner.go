package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// RunOptions control how a command's result is classified and surfaced
type RunOptions struct {
	// IgnoreError keeps a non-zero exit code from being reported as an error
	IgnoreError bool
	// Verbose surfaces captured output even on success
	Verbose bool
	// RawCmdLine passes name and args to the OS verbatim, joined by spaces.
	// Callers quote arguments themselves. Only meaningful on Windows.
	RawCmdLine bool
}

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

type CommandError struct {
	Cmd      string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("'%s' failed with exit code %d", e.Cmd, e.ExitCode)
}

type Runner interface {
	Run(ctx context.Context, name string, args []string, opts RunOptions) (Result, error)
}

// ExecRunner runs binaries without a shell, waiting for them to finish
type ExecRunner struct {
	Logger logrus.FieldLogger
	Stdout io.Writer
	Stderr io.Writer
}

func NewExecRunner(logger logrus.FieldLogger) *ExecRunner {
	return &ExecRunner{Logger: logger, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args []string, opts RunOptions) (Result, error) {
	var outb, errb bytes.Buffer

	cmdLine := strings.TrimSpace(name + " " + strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	if opts.RawCmdLine {
		setRawCmdLine(cmd, cmdLine)
	}
	cmd.Stdout = &outb
	cmd.Stderr = &errb

	r.Logger.Debugln("Running:", cmdLine)
	err := cmd.Run()

	res := Result{Stdout: outb.String(), Stderr: errb.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("failed to start '%s': %w", cmdLine, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	failed := !opts.IgnoreError && res.ExitCode != 0
	if opts.Verbose || failed {
		r.surface(res)
	}
	r.Logger.Debugf("'%s' exited with code %d", cmdLine, res.ExitCode)

	if failed {
		return res, &CommandError{Cmd: cmdLine, ExitCode: res.ExitCode}
	}
	return res, nil
}

func (r *ExecRunner) surface(res Result) {
	if strings.TrimSpace(res.Stdout) != "" {
		fmt.Fprintln(r.Stdout, res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "" {
		fmt.Fprintln(r.Stderr, res.Stderr)
	}
}
