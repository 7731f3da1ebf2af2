package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3errors "github.com/pgavriel/MOADv2/aws/s3/errors"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
	"github.com/pgavriel/MOADv2/config"
	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
)

// Downloader fetches catalog objects from a Remote into a local target directory.
type Downloader struct {
	remote    Remote
	fsys      fs.Filesystem
	features  config.FeaturesConfig
	targetDir string

	confirmer Confirmer
	reporter  Reporter
	logger    *slog.Logger
	dryRun    bool
	runID     string
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithConfirmer sets the operator confirmation policy. The default approves everything.
func WithConfirmer(c Confirmer) Option {
	return func(d *Downloader) {
		d.confirmer = c
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(d *Downloader) {
		d.reporter = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithDryRun plans and lists without transferring anything.
func WithDryRun(dryRun bool) Option {
	return func(d *Downloader) {
		d.dryRun = dryRun
	}
}

// WithRunID tags the run report and every log record with id.
func WithRunID(id string) Option {
	return func(d *Downloader) {
		d.runID = id
	}
}

// NewDownloader creates a downloader for the features and target directory of cfg.
// fsys must be the filesystem the remote writes into.
func NewDownloader(remote Remote, fsys fs.Filesystem, cfg *config.RunConfig, opts ...Option) *Downloader {
	d := &Downloader{
		remote:    remote,
		fsys:      fsys,
		features:  cfg.Features,
		targetDir: cfg.TargetDir,
		confirmer: AutoConfirm,
		reporter:  NopReporter{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.runID != "" {
		d.logger = d.logger.With("run_id", d.runID)
	}
	return d
}

// run holds the per-run state shared across objects.
type run struct {
	// decisions caches the operator's answer per confirmed category.
	decisions map[Category]bool
}

// Run downloads objects in order.
//
// The operator confirms once before anything is transferred; declining
// returns an ABORTED error. A missing object is logged and skipped. Failures
// inside one category are recorded in the object report and never stop the
// other categories or objects. Only cancellation and confirmation failures
// end the run early; the partial report is returned alongside the error and
// still reaches the reporter.
func (d *Downloader) Run(ctx context.Context, objects []string) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{RunID: d.runID, DryRun: d.dryRun}

	question := fmt.Sprintf("Download %d object(s) to %s?", len(objects), d.targetDir)
	if d.dryRun {
		question = fmt.Sprintf("Plan download of %d object(s) to %s (dry run)?", len(objects), d.targetDir)
	}
	ok, err := d.confirmer.Confirm(ctx, question)
	if err != nil {
		return report, errors.Wrap(err, errors.CodeAborted, "confirmation failed")
	}
	if !ok {
		return report, errors.New(errors.CodeAborted, "download aborted by operator")
	}

	r := &run{decisions: make(map[Category]bool)}

	for i, object := range objects {
		if err := ctx.Err(); err != nil {
			return d.finish(report, start, err)
		}

		d.reporter.ObjectStarted(object, i, len(objects))
		obj, err := d.downloadObject(ctx, r, object)
		report.Objects = append(report.Objects, obj)
		d.reporter.ObjectFinished(obj)
		if err != nil {
			return d.finish(report, start, err)
		}
	}

	return d.finish(report, start, nil)
}

func (d *Downloader) finish(report *RunReport, start time.Time, err error) (*RunReport, error) {
	report.Elapsed = time.Since(start)
	report.Interrupted = err != nil
	d.reporter.RunFinished(report)
	return report, err
}

// downloadObject runs every planned task of one object. The returned error
// is fatal to the run; task failures are recorded in the report instead.
func (d *Downloader) downloadObject(ctx context.Context, r *run, object string) (*ObjectReport, error) {
	start := time.Now()
	report := &ObjectReport{Object: object}
	defer func() { report.Elapsed = time.Since(start) }()

	log := d.logger.With("object", object)

	exists, err := d.remote.PrefixExists(ctx, object+"/")
	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		log.Error("object lookup failed", "error", err)
		report.Errors = append(report.Errors, TaskError{Path: object + "/", Err: err})
		return report, nil
	}
	if !exists {
		log.Warn("object not found in bucket, skipping")
		report.Missing = true
		return report, nil
	}

	if NeedsPoses(d.features) {
		poses, err := DiscoverPoses(ctx, d.remote, object)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			log.Error("pose discovery failed", "error", err)
			report.Errors = append(report.Errors, TaskError{Path: object + "/", Err: err})
		} else if len(poses) == 0 {
			log.Warn("object has no pose folders")
		} else {
			log.Info("discovered poses", "count", len(poses), "poses", poses)
		}
		report.Poses = poses
	}

	for _, task := range Plan(object, report.Poses, d.features, d.targetDir) {
		if err := d.runTask(ctx, r, task, report, log); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (d *Downloader) runTask(ctx context.Context, r *run, task Task, report *ObjectReport, log *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log = log.With("category", string(task.Category))
	if task.Pose != "" {
		log = log.With("pose", task.Pose)
	}

	if task.ExpectedFiles > 0 {
		complete, err := IsComplete(d.fsys, task.Local, task.ExpectedFiles)
		if err != nil {
			log.Error("completeness probe failed", "path", task.Local, "error", err)
			report.addError(task, task.Local, err)
			return nil
		}
		if complete {
			log.Info("already complete, skipping", "path", task.Local, "files", task.ExpectedFiles)
			report.Complete = append(report.Complete, task.Local)
			return nil
		}
	}

	if task.Confirm {
		approved, err := d.confirmCategory(ctx, r, task)
		if err != nil {
			return err
		}
		if !approved {
			report.Declined = appendCategory(report.Declined, task.Category)
			return nil
		}
	}

	switch task.Kind {
	case TaskPrefix:
		d.mirror(ctx, task, report, log)
	case TaskFile:
		d.downloadFile(ctx, task, report, log)
	}
	return ctx.Err()
}

// confirmCategory asks once per run; the answer sticks for later objects and poses.
func (d *Downloader) confirmCategory(ctx context.Context, r *run, task Task) (bool, error) {
	if approved, asked := r.decisions[task.Category]; asked {
		return approved, nil
	}

	question := fmt.Sprintf("Download %s data (%s)?", task.Category, task.Remote)
	if task.ExpectedFiles > 0 {
		question = fmt.Sprintf("Download %s data (%d files per folder, starting with %s)?",
			task.Category, task.ExpectedFiles, task.Remote)
	}
	approved, err := d.confirmer.Confirm(ctx, question)
	if err != nil {
		return false, errors.Wrap(err, errors.CodeAborted, "confirmation failed")
	}
	if !approved {
		d.logger.Warn("category declined, skipping for this run", "category", string(task.Category))
	}
	r.decisions[task.Category] = approved
	return approved, nil
}

func (d *Downloader) mirror(ctx context.Context, task Task, report *ObjectReport, log *slog.Logger) {
	result, err := d.remote.Mirror(ctx, task.Remote, task.Local, d.dryRun)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("mirror failed", "prefix", task.Remote, "error", err)
			report.addError(task, task.Remote, err)
		}
		return
	}
	if result == nil {
		return
	}
	if !result.Found {
		log.Warn("remote folder not found, skipping", "prefix", task.Remote)
		report.NotFound = append(report.NotFound, task.Remote)
		return
	}

	report.FilesDownloaded += result.FilesDownloaded
	report.FilesSkipped += result.FilesSkipped
	report.BytesDownloaded += result.BytesDownloaded
	if d.dryRun {
		for _, op := range result.Operations {
			if op.Action == s3types.MirrorDownload {
				report.FilesPlanned++
			}
		}
	}
	for _, me := range result.Errors {
		log.Error("file failed", "key", me.Key, "path", me.LocalPath, "error", me.Err)
		report.addError(task, me.Key, me.Err)
	}

	log.Info("folder done",
		"prefix", task.Remote,
		"downloaded", result.FilesDownloaded,
		"skipped", result.FilesSkipped,
		"elapsed", result.Duration.Round(time.Millisecond))
}

func (d *Downloader) downloadFile(ctx context.Context, task Task, report *ObjectReport, log *slog.Logger) {
	if d.dryRun {
		d.planFile(ctx, task, report, log)
		return
	}

	result, err := d.remote.DownloadFile(ctx, task.Remote, task.Local)
	switch {
	case err == nil && result.Skipped:
		report.FilesSkipped++
	case err == nil:
		report.FilesDownloaded++
		report.BytesDownloaded += result.Size
	case s3errors.IsObjectNotFound(err):
		log.Warn("remote file not found, skipping", "key", task.Remote)
		report.NotFound = append(report.NotFound, task.Remote)
	case ctx.Err() != nil:
	default:
		log.Error("download failed", "key", task.Remote, "path", task.Local, "error", err)
		report.addError(task, task.Remote, err)
	}
}

func (d *Downloader) planFile(ctx context.Context, task Task, report *ObjectReport, log *slog.Logger) {
	local, err := d.fsys.Exists(task.Local)
	if err != nil {
		report.addError(task, task.Local, err)
		return
	}
	if local {
		report.FilesSkipped++
		return
	}

	remote, err := d.remote.Exists(ctx, task.Remote)
	switch {
	case err != nil:
		if ctx.Err() == nil {
			report.addError(task, task.Remote, err)
		}
	case !remote:
		log.Warn("remote file not found, skipping", "key", task.Remote)
		report.NotFound = append(report.NotFound, task.Remote)
	default:
		report.FilesPlanned++
	}
}

func appendCategory(list []Category, c Category) []Category {
	for _, existing := range list {
		if existing == c {
			return list
		}
	}
	return append(list, c)
}
