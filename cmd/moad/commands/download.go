package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pgavriel/MOADv2/aws/s3"
	"github.com/pgavriel/MOADv2/aws/s3/s3types"
	"github.com/pgavriel/MOADv2/config"
	"github.com/pgavriel/MOADv2/dataset"
	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
	"github.com/pgavriel/MOADv2/fs/billy"
	"github.com/pgavriel/MOADv2/internal/cli/output"
	"github.com/pgavriel/MOADv2/internal/cli/prompt"
)

var (
	downloadGroup     string
	downloadConfigDir string
	downloadYes       bool
	downloadDryRun    bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download catalog objects from the dataset bucket",
	Long: `Download every object of a catalog group into the target directory.

The catalog (objects.json) and the run configuration
(downloader_config.json) are read from --config-dir. Files that already
exist locally are skipped, so an interrupted run can simply be restarted.

Examples:
  # Download the group named in downloader_config.json
  moad download

  # Download another group without prompts
  moad download --group atb1 --yes

  # Show what would be transferred
  moad download --dry-run

  # Override the target directory from the environment
  MOAD_TARGET_DIR=/data/moad moad download`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadGroup, "group", "g", "", "catalog group to download (default: object_group from the run configuration)")
	downloadCmd.Flags().StringVar(&downloadConfigDir, "config-dir", "./config", "directory holding objects.json and downloader_config.json")
	downloadCmd.Flags().BoolVarP(&downloadYes, "yes", "y", false, "answer yes to every confirmation")
	downloadCmd.Flags().BoolVar(&downloadDryRun, "dry-run", false, "list what would be downloaded without transferring")
}

func runDownload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fsys := billy.NewBaseOSFS()

	cfg, err := config.Load(fsys, downloadConfigDir, downloadGroup)
	if err != nil {
		return err
	}
	run := cfg.Run

	_ = output.KeyValues(out, [][2]string{
		{"Bucket", run.Bucket},
		{"Group", fmt.Sprintf("%s (%d objects)", cfg.Group, len(cfg.Objects))},
		{"Target", run.TargetDir},
		{"Auth", run.Auth.Mode},
	})
	fmt.Fprintln(out)

	client, err := newS3Client(ctx, run, fsys)
	if err != nil {
		return errors.Wrap(err, errors.CodeNetwork, "failed to create storage client")
	}

	runID := uuid.NewString()
	d := dataset.NewDownloader(dataset.NewS3Remote(client, run.Bucket), fsys, run,
		dataset.WithConfirmer(dataset.ConfirmFunc(confirmFunc(downloadYes))),
		dataset.WithReporter(dataset.NewConsoleReporter(out)),
		dataset.WithLogger(appLogger),
		dataset.WithDryRun(downloadDryRun),
		dataset.WithRunID(runID),
	)

	_, err = d.Run(ctx, cfg.Objects)
	if err != nil && errors.HasCode(err, errors.CodeAborted) && !prompt.IsAborted(err) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}
	return err
}

func newS3Client(ctx context.Context, run *config.RunConfig, fsys fs.Filesystem) (*s3.Client, error) {
	opts := []s3types.Option{
		s3.WithRegion(run.Region),
		s3.WithForcePathStyle(run.ForcePathStyle),
		s3.WithMaxRetries(run.MaxRetries),
		s3.WithTimeout(run.Timeout),
		s3.WithFilesystem(fsys),
		s3.WithLogger(appLogger),
	}
	if run.Endpoint != "" {
		opts = append(opts, s3.WithEndpoint(run.Endpoint))
	}
	switch {
	case run.Auth.Anonymous():
		opts = append(opts, s3.WithAnonymousCredentials())
	case run.Auth.Profile != "":
		opts = append(opts, s3.WithProfile(run.Auth.Profile))
	}
	if run.RateLimit > 0 {
		opts = append(opts, s3.WithRateLimit(int64(run.RateLimit)))
	}
	return s3.New(ctx, opts...)
}
