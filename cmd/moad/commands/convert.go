package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgavriel/MOADv2/blender"
	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
	"github.com/pgavriel/MOADv2/fs/billy"
	"github.com/pgavriel/MOADv2/internal/cli/output"
)

var (
	convertRoot    string
	convertScript  string
	convertBlender string
	convertTimeout time.Duration
	convertYes     bool

	cadPattern    string
	cadMaxDepth   int
	cadIgnoreCase bool

	plyObjectPattern string
	plyAutoSkip      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Run Blender conversions over downloaded data",
	Long: `Run a Blender Python script in background mode over many files.

Each file is converted by its own Blender process, one at a time. A CSV
summary is written to <root>/_blender_logs/ when the batch ends.`,
}

var convertCADCmd = &cobra.Command{
	Use:   "cad",
	Short: "Convert CAD exports (STL by default)",
	Long: `Search --root for CAD files up to --max-depth levels deep and convert
each one with --script.

Examples:
  moad convert cad --root /data/cad --script scripts/blender_convert_cad_to_usd.py
  moad convert cad --root /data/cad --script convert.py --pattern '\.(stl|obj)$' --ignore-case`,
	Args: cobra.NoArgs,
	RunE: runConvertCAD,
}

var convertPLYCmd = &cobra.Command{
	Use:   "ply",
	Short: "Convert fused scan meshes (*_mesh.ply)",
	Long: `Search --root for fused/ folders and convert the *_mesh.ply inside each
with --script. Folders that already hold conversion outputs are offered
for skipping, or skipped outright with --auto-skip.

Examples:
  moad convert ply --root /data/moad --script scripts/blender_convert_ply.py
  moad convert ply --root /data/moad --script convert.py --object-pattern 'atb1_' --auto-skip`,
	Args: cobra.NoArgs,
	RunE: runConvertPLY,
}

func init() {
	for _, c := range []*cobra.Command{convertCADCmd, convertPLYCmd} {
		c.Flags().StringVar(&convertRoot, "root", "", "folder to search")
		c.Flags().StringVar(&convertScript, "script", "", "Blender Python script to run on each file")
		c.Flags().StringVar(&convertBlender, "blender", blender.DefaultProgram, "Blender executable")
		c.Flags().DurationVar(&convertTimeout, "timeout", 0, "limit for each Blender run (0 = none)")
		c.Flags().BoolVarP(&convertYes, "yes", "y", false, "answer yes to every confirmation")
		_ = c.MarkFlagRequired("root")
		_ = c.MarkFlagRequired("script")
	}

	convertCADCmd.Flags().StringVar(&cadPattern, "pattern", `\.(stl)$`, "regular expression matched against file names")
	convertCADCmd.Flags().IntVar(&cadMaxDepth, "max-depth", blender.DefaultMaxDepth, "folder levels to descend (negative = unlimited)")
	convertCADCmd.Flags().BoolVar(&cadIgnoreCase, "ignore-case", false, "match the pattern case-insensitively")

	convertPLYCmd.Flags().StringVar(&plyObjectPattern, "object-pattern", "", "only objects whose folder name starts with this regular expression")
	convertPLYCmd.Flags().BoolVar(&plyAutoSkip, "auto-skip", false, "skip already processed folders without asking")

	convertCmd.AddCommand(convertCADCmd)
	convertCmd.AddCommand(convertPLYCmd)
}

func runConvertCAD(cmd *cobra.Command, _ []string) error {
	fsys := billy.NewBaseOSFS()
	root, err := fs.GetAbs(convertRoot)
	if err != nil {
		return err
	}

	runner, err := newScriptRunner(cmd, fsys)
	if err != nil {
		return err
	}

	files, err := blender.FindFiles(fsys, root, cadPattern, cadMaxDepth, cadIgnoreCase)
	if err != nil {
		return err
	}

	batch := blender.NewBatch(runner, fsys, blender.WithLogger(appLogger))
	return runBatch(cmd.Context(), cmd.OutOrStdout(), fsys, root, batch, files, nil)
}

func runConvertPLY(cmd *cobra.Command, _ []string) error {
	fsys := billy.NewBaseOSFS()
	root, err := fs.GetAbs(convertRoot)
	if err != nil {
		return err
	}

	runner, err := newScriptRunner(cmd, fsys)
	if err != nil {
		return err
	}

	choose := chooseMesh
	if convertYes {
		choose = blender.SkipAmbiguous
	}
	meshes, err := blender.FindFusedMeshes(fsys, root, plyObjectPattern, choose)
	if err != nil {
		return err
	}

	batch := blender.NewBatch(runner, fsys,
		blender.WithLogger(appLogger),
		blender.WithProcessedCheck(blender.AlreadyProcessed),
		blender.WithAutoSkip(plyAutoSkip),
		blender.WithConfirmer(blender.ConfirmFunc(confirmFunc(convertYes))),
	)
	return runBatch(cmd.Context(), cmd.OutOrStdout(), fsys, root, batch, meshes, blender.AlreadyProcessed)
}

func newScriptRunner(cmd *cobra.Command, fsys fs.Filesystem) (*blender.ScriptRunner, error) {
	script, err := fs.GetAbs(convertScript)
	if err != nil {
		return nil, err
	}
	return blender.NewScriptRunner(fsys, script,
		blender.WithProgram(convertBlender),
		blender.WithTimeout(convertTimeout),
		blender.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		blender.WithRunnerLogger(appLogger),
	)
}

// runBatch lists the inputs, asks to proceed, runs the batch and writes the summary.
func runBatch(
	ctx context.Context,
	out io.Writer,
	fsys fs.Filesystem,
	root string,
	batch *blender.Batch,
	inputs []string,
	processed blender.ProcessedFunc,
) error {
	if len(inputs) == 0 {
		fmt.Fprintln(out, "No matching files found.")
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s):\n", len(inputs))
	for _, in := range inputs {
		marker := ""
		if processed != nil {
			if done, _ := processed(fsys, in); done {
				marker = "[already processed] "
			}
		}
		fmt.Fprintf(out, "  - %s%s\n", marker, in)
	}

	ok, err := confirmFunc(convertYes)(ctx, "Proceed with conversion?")
	if err != nil {
		return errors.Wrap(err, errors.CodeAborted, "confirmation failed")
	}
	if !ok {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	started := time.Now()
	results, runErr := batch.Run(ctx, inputs)

	table := output.NewTableData("Model", "Status", "Time")
	for _, r := range results {
		table.AddRow(r.Model, string(r.Status), strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 2, 64)+"s")
	}
	fmt.Fprintln(out)
	_ = output.PrintTable(out, table)

	counts := blender.Summarize(results)
	fmt.Fprintf(out, "%d succeeded, %d failed, %d skipped in %s\n",
		counts[blender.StatusSuccess], counts[blender.StatusFail], counts[blender.StatusSkipped],
		time.Since(started).Round(time.Second))

	path, err := blender.WriteSummaryCSV(fsys, root, started, results)
	if err != nil {
		if runErr != nil {
			return runErr
		}
		return err
	}
	fmt.Fprintf(out, "Summary written to %s\n", path)
	return runErr
}
