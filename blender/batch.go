package blender

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
)

// Status is the outcome of one batch item.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Result records one batch item.
type Result struct {
	Timestamp time.Time
	Input     string
	// Model is the base name of Input.
	Model    string
	Elapsed  time.Duration
	Status   Status
	ExitCode int
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// ProcessedFunc reports whether input already has conversion outputs.
type ProcessedFunc func(fsys fs.Filesystem, input string) (bool, error)

// Batch runs a Runner over inputs one at a time.
type Batch struct {
	runner    Runner
	fsys      fs.Filesystem
	processed ProcessedFunc
	autoSkip  bool
	confirmer Confirmer
	logger    *slog.Logger
	now       func() time.Time
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithProcessedCheck enables the skip policy for inputs that processed
// reports as done.
func WithProcessedCheck(processed ProcessedFunc) BatchOption {
	return func(b *Batch) {
		b.processed = processed
	}
}

// WithAutoSkip skips processed inputs without asking.
func WithAutoSkip(autoSkip bool) BatchOption {
	return func(b *Batch) {
		b.autoSkip = autoSkip
	}
}

// WithConfirmer asks before reprocessing an input. Without one, processed
// inputs are skipped.
func WithConfirmer(c Confirmer) BatchOption {
	return func(b *Batch) {
		b.confirmer = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithClock replaces time.Now for result timestamps.
func WithClock(now func() time.Time) BatchOption {
	return func(b *Batch) {
		b.now = now
	}
}

// NewBatch creates a batch driving runner.
func NewBatch(runner Runner, fsys fs.Filesystem, opts ...BatchOption) *Batch {
	b := &Batch{
		runner: runner,
		fsys:   fsys,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run converts inputs in order. A failed conversion is recorded and the
// batch moves on; only cancellation and confirmation failures stop it, and
// the results gathered so far are returned with the error.
func (b *Batch) Run(ctx context.Context, inputs []string) ([]Result, error) {
	results := make([]Result, 0, len(inputs))
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		log := b.logger.With("input", input, "item", fmt.Sprintf("%d/%d", i+1, len(inputs)))

		res := Result{Timestamp: b.now(), Input: input, Model: filepath.Base(input)}

		skip, err := b.shouldSkip(ctx, input)
		if err != nil {
			return results, err
		}
		if skip {
			log.Info("already processed, skipping")
			res.Status = StatusSkipped
			results = append(results, res)
			continue
		}

		out, err := b.runner.Run(ctx, input)
		res.Elapsed = out.Elapsed
		res.ExitCode = out.ExitCode
		switch {
		case err != nil && ctx.Err() != nil:
			return results, ctx.Err()
		case err != nil:
			log.Error("conversion failed", "error", err)
			res.Status = StatusFail
		case out.Success():
			res.Status = StatusSuccess
		default:
			log.Warn("conversion failed", "exit_code", out.ExitCode)
			res.Status = StatusFail
		}
		results = append(results, res)
	}
	return results, nil
}

func (b *Batch) shouldSkip(ctx context.Context, input string) (bool, error) {
	if b.processed == nil {
		return false, nil
	}
	done, err := b.processed(b.fsys, input)
	if err != nil {
		b.logger.Warn("processed check failed", "input", input, "error", err)
		return false, nil
	}
	if !done {
		return false, nil
	}
	if b.autoSkip || b.confirmer == nil {
		return true, nil
	}

	again, err := b.confirmer.Confirm(ctx, fmt.Sprintf("%s looks already processed. Continue anyway?", filepath.Dir(input)))
	if err != nil {
		return false, errors.Wrap(err, errors.CodeAborted, "confirmation failed")
	}
	return !again, nil
}

// Summarize counts results by status.
func Summarize(results []Result) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
