package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgavriel/MOADv2/fs/billy"
	"github.com/pgavriel/MOADv2/urdf"
)

var (
	urdfFolder      string
	urdfMass        float64
	urdfFriction    float64
	urdfMeshPath    string
	urdfNoOverwrite bool
)

var urdfCmd = &cobra.Command{
	Use:   "urdf",
	Short: "Write URDF descriptions for downloaded objects",
	Long: `Write fused/<object>.urdf for every object folder under --folder that
has a fused model. Folders without a fused/ directory are skipped.

Examples:
  moad urdf --folder /data/moad
  moad urdf --folder /data/moad --mass 0.25 --no-overwrite`,
	Args: cobra.NoArgs,
	RunE: runURDF,
}

func init() {
	defaults := urdf.DefaultParams()
	urdfCmd.Flags().StringVar(&urdfFolder, "folder", "", "dataset root holding one folder per object")
	urdfCmd.Flags().Float64Var(&urdfMass, "mass", defaults.Mass, "link mass in kilograms")
	urdfCmd.Flags().Float64Var(&urdfFriction, "lateral-friction", defaults.LateralFriction, "lateral friction coefficient")
	urdfCmd.Flags().StringVar(&urdfMeshPath, "mesh", defaults.MeshPath, "mesh path relative to the fused folder")
	urdfCmd.Flags().BoolVar(&urdfNoOverwrite, "no-overwrite", false, "keep existing descriptions")
	_ = urdfCmd.MarkFlagRequired("folder")
}

func runURDF(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	gen := urdf.NewGenerator(billy.NewBaseOSFS(),
		urdf.WithMass(urdfMass),
		urdf.WithLateralFriction(urdfFriction),
		urdf.WithMeshPath(urdfMeshPath),
		urdf.WithOverwrite(!urdfNoOverwrite),
		urdf.WithLogger(appLogger),
	)

	res, err := gen.Generate(urdfFolder)
	if err != nil {
		return err
	}

	for _, p := range res.Created {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	fmt.Fprintf(out, "%d written, %d kept, %d without fused model\n",
		len(res.Created), len(res.Existing), len(res.Skipped))
	return nil
}
