// Package executor runs external programs such as Blender with output
// capture, per-call timeouts and context cancellation.
//
// A non-zero exit is returned as an error together with a Result carrying
// the exit code, so callers can tell "ran and failed" (ExitCode > 0) from
// "never ran" (ExitCode -1).
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrProgramNotFound is returned by LookPath when a program cannot be resolved.
var ErrProgramNotFound = errors.New("executor: program not found")

// Result holds the output and outcome of one run.
type Result struct {
	Stdout   string
	Stderr   string
	Combined string
	// ExitCode is -1 when the process could not be started or was killed.
	ExitCode int
	Duration time.Duration
	Err      error
}

// Success reports whether the command exited with code 0.
func (r *Result) Success() bool {
	return r != nil && r.Err == nil && r.ExitCode == 0
}

// Options configures a run.
type Options struct {
	CaptureStdout   bool
	CaptureStderr   bool
	CaptureCombined bool

	// RedirectToConsole also copies output to the process stdout and stderr.
	RedirectToConsole bool

	// Timeout bounds the run; zero means no limit beyond ctx.
	Timeout time.Duration

	WorkingDir string

	// Env is appended to the current environment.
	Env map[string]string

	StdoutWriter io.Writer
	StderrWriter io.Writer

	Logger *slog.Logger
}

// Option modifies Options.
type Option func(*Options)

// DefaultOptions captures stdout and stderr separately.
func DefaultOptions() *Options {
	return &Options{
		CaptureStdout: true,
		CaptureStderr: true,
	}
}

func (o *Options) clone(opts ...Option) *Options {
	c := *o
	c.Env = make(map[string]string, len(o.Env))
	for k, v := range o.Env {
		c.Env[k] = v
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// LookPath resolves program on PATH, or checks it directly when it contains
// a path separator.
func LookPath(program string) (string, error) {
	path, err := exec.LookPath(program)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrProgramNotFound, program, err)
	}
	return path, nil
}

// CommandExecutor is one program invocation with fixed arguments.
type CommandExecutor struct {
	program string
	args    []string
	options *Options
}

// New creates a CommandExecutor with default options.
func New(program string, args ...string) *CommandExecutor {
	return &CommandExecutor{program: program, args: args, options: DefaultOptions()}
}

// String renders the command line for logs.
func (c *CommandExecutor) String() string {
	return strings.Join(append([]string{c.program}, c.args...), " ")
}

// Execute runs the command once. Per-call options override the executor's.
func (c *CommandExecutor) Execute(ctx context.Context, opts ...Option) (*Result, error) {
	o := c.options.clone(opts...)

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.program, c.args...)
	cmd.Dir = o.WorkingDir
	if len(o.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range o.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdout, stderr, combined bytes.Buffer
	cmd.Stdout = streamWriter(o, o.CaptureStdout, &stdout, &combined, os.Stdout, o.StdoutWriter)
	cmd.Stderr = streamWriter(o, o.CaptureStderr, &stderr, &combined, os.Stderr, o.StderrWriter)

	started := time.Now()
	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Combined: combined.String(),
		ExitCode: exitCode(err),
		Duration: time.Since(started),
		Err:      err,
	}

	if o.Logger != nil {
		o.Logger.Debug("command finished",
			"command", c.String(),
			"exit_code", result.ExitCode,
			"duration", result.Duration)
	}

	if err != nil {
		return result, fmt.Errorf("command execution failed: %w", err)
	}
	return result, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// streamWriter fans one output stream out to its capture buffer, the console
// and an optional custom writer. It returns nil when nothing wants the stream.
func streamWriter(o *Options, capture bool, own, combined *bytes.Buffer, console, custom io.Writer) io.Writer {
	var writers []io.Writer
	switch {
	case o.CaptureCombined:
		writers = append(writers, combined)
	case capture:
		writers = append(writers, own)
	}
	if o.RedirectToConsole {
		writers = append(writers, console)
	}
	if custom != nil {
		writers = append(writers, custom)
	}

	if len(writers) == 0 {
		return nil
	}
	return io.MultiWriter(writers...)
}

// WrappedExecutor binds a program so callers only supply arguments.
type WrappedExecutor struct {
	program string
	options *Options
}

// NewWrappedExecutor creates an executor for program.
func NewWrappedExecutor(program string, opts ...Option) *WrappedExecutor {
	return &WrappedExecutor{program: program, options: DefaultOptions().clone(opts...)}
}

// Program returns the wrapped program name or path.
func (w *WrappedExecutor) Program() string {
	return w.program
}

// Command creates an executor for the wrapped program with args.
func (w *WrappedExecutor) Command(args ...string) *CommandExecutor {
	return &CommandExecutor{program: w.program, args: args, options: w.options}
}

// Execute runs the wrapped program with args.
func (w *WrappedExecutor) Execute(ctx context.Context, args []string, opts ...Option) (*Result, error) {
	result, err := w.Command(args...).Execute(ctx, opts...)
	if err != nil {
		return result, fmt.Errorf("failed to execute %s with args %v: %w", w.program, args, err)
	}
	return result, nil
}

// WithCapture selects which streams are kept in the Result.
func WithCapture(stdout, stderr, combined bool) Option {
	return func(o *Options) {
		o.CaptureStdout = stdout
		o.CaptureStderr = stderr
		o.CaptureCombined = combined
	}
}

// WithConsoleRedirect copies output to the process console.
func WithConsoleRedirect(redirect bool) Option {
	return func(o *Options) {
		o.RedirectToConsole = redirect
	}
}

// WithTimeout bounds the run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnvVar adds one environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithStdoutWriter streams stdout to w.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter streams stderr to w.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

// WithLogger logs every run at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
