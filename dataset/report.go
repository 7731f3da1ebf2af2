package dataset

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pgavriel/MOADv2/internal/cli/output"
)

// TaskError records a failure that did not stop the run.
type TaskError struct {
	Category Category
	// Path is the remote key or prefix, or the local path for local failures.
	Path string
	Err  error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Category, e.Path, e.Err)
}

func (e TaskError) Unwrap() error {
	return e.Err
}

// ObjectReport summarizes the transfers of one catalog object.
type ObjectReport struct {
	Object string

	// Missing is true when the object has no keys in the bucket.
	Missing bool

	Poses []string

	FilesDownloaded int
	FilesSkipped    int
	BytesDownloaded int64

	// FilesPlanned counts files a dry run would download.
	FilesPlanned int

	// Complete lists local folders skipped by the completeness probe.
	Complete []string

	// Declined lists the categories the operator declined.
	Declined []Category

	// NotFound lists remote prefixes and keys that held nothing.
	NotFound []string

	Errors []TaskError

	Elapsed time.Duration
}

// Failed reports whether any transfer of the object failed.
func (r *ObjectReport) Failed() bool {
	return len(r.Errors) > 0
}

func (r *ObjectReport) addError(task Task, path string, err error) {
	r.Errors = append(r.Errors, TaskError{Category: task.Category, Path: path, Err: err})
}

// RunReport summarizes a whole download run.
type RunReport struct {
	RunID   string
	DryRun  bool
	Objects []*ObjectReport
	Elapsed time.Duration

	// Interrupted is set when cancellation or a failed confirmation ended
	// the run before every object was processed.
	Interrupted bool
}

// Totals sums the per-object counters.
func (r *RunReport) Totals() (downloaded, skipped int, bytes int64, failures int) {
	for _, o := range r.Objects {
		downloaded += o.FilesDownloaded
		skipped += o.FilesSkipped
		bytes += o.BytesDownloaded
		failures += len(o.Errors)
	}
	return downloaded, skipped, bytes, failures
}

// Failed reports whether any object recorded an error.
func (r *RunReport) Failed() bool {
	for _, o := range r.Objects {
		if o.Failed() {
			return true
		}
	}
	return false
}

// Reporter receives progress events from a run.
type Reporter interface {
	ObjectStarted(object string, index, total int)
	ObjectFinished(report *ObjectReport)
	RunFinished(report *RunReport)
}

// NopReporter ignores every event.
type NopReporter struct{}

func (NopReporter) ObjectStarted(string, int, int) {}
func (NopReporter) ObjectFinished(*ObjectReport)   {}
func (NopReporter) RunFinished(*RunReport)         {}

// ConsoleReporter prints per-object timing lines and a final summary table.
type ConsoleReporter struct {
	w io.Writer
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// ObjectStarted implements Reporter.
func (c *ConsoleReporter) ObjectStarted(object string, index, total int) {
	fmt.Fprintf(c.w, "[%d/%d] %s\n", index+1, total, object)
}

// ObjectFinished implements Reporter.
func (c *ConsoleReporter) ObjectFinished(r *ObjectReport) {
	if r.Missing {
		fmt.Fprintf(c.w, "  %s not found in bucket, skipped\n", r.Object)
		return
	}
	fmt.Fprintf(c.w, "  %s done in %s: %d downloaded (%s), %d skipped",
		r.Object, r.Elapsed.Round(time.Millisecond), r.FilesDownloaded,
		humanize.Bytes(uint64(r.BytesDownloaded)), r.FilesSkipped)
	if r.FilesPlanned > 0 {
		fmt.Fprintf(c.w, ", %d planned", r.FilesPlanned)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(c.w, ", %d failed", len(r.Errors))
	}
	fmt.Fprintln(c.w)
}

// RunFinished implements Reporter.
func (c *ConsoleReporter) RunFinished(r *RunReport) {
	table := output.NewTableData("Object", "Poses", "Downloaded", "Skipped", "Size", "Not found", "Errors", "Time")
	for _, o := range r.Objects {
		if o.Missing {
			table.AddRow(o.Object, "-", "-", "-", "-", "object", "-", o.Elapsed.Round(time.Millisecond).String())
			continue
		}
		table.AddRow(
			o.Object,
			strconv.Itoa(len(o.Poses)),
			strconv.Itoa(o.FilesDownloaded),
			strconv.Itoa(o.FilesSkipped),
			humanize.Bytes(uint64(o.BytesDownloaded)),
			strconv.Itoa(len(o.NotFound)),
			strconv.Itoa(len(o.Errors)),
			o.Elapsed.Round(time.Millisecond).String(),
		)
	}

	fmt.Fprintln(c.w)
	_ = output.PrintTable(c.w, table)

	for _, o := range r.Objects {
		for _, e := range o.Errors {
			fmt.Fprintf(c.w, "error: %s: %v\n", o.Object, e)
		}
	}

	downloaded, _, bytes, _ := r.Totals()
	verb := "Download"
	if r.DryRun {
		verb = "Dry run"
	}
	if r.Interrupted {
		verb += " interrupted"
	} else {
		verb += " complete"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d files, %s in %s", verb, downloaded, humanize.Bytes(uint64(bytes)), r.Elapsed.Round(time.Millisecond))
	if r.Failed() {
		b.WriteString(" (with errors)")
	}
	fmt.Fprintln(c.w, b.String())
}
