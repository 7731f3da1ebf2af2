package blender

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/executor"
	"github.com/pgavriel/MOADv2/fs"
)

// DefaultProgram is the Blender executable looked up on PATH.
const DefaultProgram = "blender"

// Outcome is the result of one Blender invocation.
type Outcome struct {
	Elapsed  time.Duration
	ExitCode int
}

// Success reports whether Blender exited cleanly.
func (o Outcome) Success() bool {
	return o.ExitCode == 0
}

// Runner converts one input file.
type Runner interface {
	Run(ctx context.Context, input string) (Outcome, error)
}

// ScriptRunner runs `blender --background --python <script> -- <input>`.
type ScriptRunner struct {
	exec   *executor.WrappedExecutor
	script string
	logger *slog.Logger
}

// RunnerOption configures a ScriptRunner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	program string
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// WithProgram sets the Blender executable.
func WithProgram(program string) RunnerOption {
	return func(o *runnerOptions) {
		if program != "" {
			o.program = program
		}
	}
}

// WithTimeout bounds each invocation. Zero means no limit.
func WithTimeout(d time.Duration) RunnerOption {
	return func(o *runnerOptions) {
		o.timeout = d
	}
}

// WithOutput streams Blender's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) RunnerOption {
	return func(o *runnerOptions) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(o *runnerOptions) {
		o.logger = logger
	}
}

// NewScriptRunner creates a runner for script, which must exist in fsys.
func NewScriptRunner(fsys fs.Filesystem, script string, opts ...RunnerOption) (*ScriptRunner, error) {
	o := runnerOptions{program: DefaultProgram, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if script == "" {
		return nil, errors.New(errors.CodeInvalidInput, "conversion script is required")
	}
	ok, err := fsys.Exists(script)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeStorage, "stat conversion script",
			map[string]interface{}{"path": script})
	}
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "conversion script not found").WithContext("path", script)
	}

	execOpts := []executor.Option{
		executor.WithCapture(false, true, false),
		executor.WithTimeout(o.timeout),
		executor.WithLogger(o.logger),
	}
	if o.stdout != nil {
		execOpts = append(execOpts, executor.WithStdoutWriter(o.stdout))
	}
	if o.stderr != nil {
		execOpts = append(execOpts, executor.WithStderrWriter(o.stderr))
	}

	return &ScriptRunner{
		exec:   executor.NewWrappedExecutor(o.program, execOpts...),
		script: script,
		logger: o.logger,
	}, nil
}

// Args returns the command line arguments for input.
func (r *ScriptRunner) Args(input string) []string {
	return []string{"--background", "--python", r.script, "--", input}
}

// Run implements Runner. A non-zero exit is reported in the Outcome; the
// error is reserved for Blender failing to start or the context ending.
func (r *ScriptRunner) Run(ctx context.Context, input string) (Outcome, error) {
	log := r.logger.With("input", input)
	log.Info("running blender", "program", r.exec.Program(), "script", r.script)

	result, err := r.exec.Execute(ctx, r.Args(input))
	var out Outcome
	if result != nil {
		out = Outcome{Elapsed: result.Duration, ExitCode: result.ExitCode}
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		if result == nil || result.ExitCode < 0 {
			return out, errors.Wrap(err, errors.CodeExecutionFailed, "start blender")
		}
		log.Error("blender failed",
			"exit_code", result.ExitCode,
			"elapsed", out.Elapsed.Round(time.Millisecond),
			"stderr", lastLine(result.Stderr))
		return out, nil
	}

	log.Info("blender finished", "elapsed", out.Elapsed.Round(time.Millisecond))
	return out, nil
}

func lastLine(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	start := end
	for start > 0 && s[start-1] != '\n' {
		start--
	}
	return s[start:end]
}
