package dataset

import (
	"path"
	"path/filepath"

	"github.com/pgavriel/MOADv2/config"
)

// Category names a downloadable feature category.
type Category string

// Categories, in plan order.
const (
	CategoryRGB                Category = "rgb"
	CategoryPoseReconstruction Category = "pose_reconstruction"
	CategoryRealsense          Category = "realsense"
	CategoryCADModel           Category = "cad_model"
	CategoryRawCloud           Category = "fused_model.raw_cloud"
	CategoryRawMesh            Category = "fused_model.raw_mesh"
	CategoryOBJMesh            Category = "fused_model.obj_mesh"
	CategoryUSDMesh            Category = "fused_model.usd_mesh"
	CategoryBlenderFile        Category = "fused_model.blender_file"
)

// Fixed remote and local names of the fused model layout.
const (
	RemoteFusedDir   = "fused_model"
	LocalFusedDir    = "fused"
	LocalCADDir      = "cad"
	BakedTextureFile = "baked_texture.png"
)

// TaskKind distinguishes prefix mirrors from single-object downloads.
type TaskKind string

const (
	// TaskPrefix mirrors every object under Remote into the Local directory.
	TaskPrefix TaskKind = "prefix"

	// TaskFile downloads the single object Remote to the Local file path.
	TaskFile TaskKind = "file"
)

// Task is one planned transfer.
type Task struct {
	Category Category
	Kind     TaskKind

	Object string
	// Pose is empty for object-level categories.
	Pose string

	// Remote is a prefix ending in "/" for TaskPrefix, or an object key.
	Remote string
	// Local is a directory for TaskPrefix, or a file path.
	Local string

	// ExpectedFiles enables the completeness probe on Local when positive.
	ExpectedFiles int

	// Confirm requires operator confirmation before the category's first transfer.
	Confirm bool
}

// fusedArtifact maps one fused model toggle onto its remote and local folders.
type fusedArtifact struct {
	category Category
	enabled  func(config.FusedConfig) bool
	remote   string
	local    string
}

var fusedArtifacts = []fusedArtifact{
	{CategoryRawCloud, func(f config.FusedConfig) bool { return f.RawCloud }, "raw_cloud", ""},
	{CategoryRawMesh, func(f config.FusedConfig) bool { return f.RawMesh }, "raw_mesh", ""},
	{CategoryOBJMesh, func(f config.FusedConfig) bool { return f.OBJMesh }, "obj", "obj"},
	{CategoryUSDMesh, func(f config.FusedConfig) bool { return f.USDMesh }, "usd", "usd"},
	{CategoryBlenderFile, func(f config.FusedConfig) bool { return f.BlenderFile }, "blend", "blend"},
}

// Plan returns the transfers for one object in execution order: the pose
// categories for every pose, then the CAD model, then the fused artifacts.
// Enabling blender_file also schedules the baked texture download.
func Plan(object string, poses []string, features config.FeaturesConfig, targetDir string) []Task {
	var tasks []Task
	objectDir := filepath.Join(targetDir, object)

	poseCategories := []struct {
		category Category
		cfg      config.CategoryConfig
	}{
		{CategoryRGB, features.RGB},
		{CategoryPoseReconstruction, features.PoseReconstruction},
		{CategoryRealsense, features.Realsense},
	}

	for _, pose := range poses {
		for _, pc := range poseCategories {
			if !pc.cfg.Enabled {
				continue
			}
			tasks = append(tasks, Task{
				Category:      pc.category,
				Kind:          TaskPrefix,
				Object:        object,
				Pose:          pose,
				Remote:        path.Join(object, pose, pc.cfg.RemoteFolder) + "/",
				Local:         filepath.Join(objectDir, pose, pc.cfg.RemoteFolder),
				ExpectedFiles: pc.cfg.ExpectedFiles,
				Confirm:       pc.cfg.Confirm,
			})
		}
	}

	if features.CADModel.Enabled {
		tasks = append(tasks, Task{
			Category:      CategoryCADModel,
			Kind:          TaskPrefix,
			Object:        object,
			Remote:        path.Join(object, features.CADModel.RemoteFolder) + "/",
			Local:         filepath.Join(objectDir, LocalCADDir),
			ExpectedFiles: features.CADModel.ExpectedFiles,
			Confirm:       features.CADModel.Confirm,
		})
	}

	fusedLocal := filepath.Join(objectDir, LocalFusedDir)
	for _, fa := range fusedArtifacts {
		if !fa.enabled(features.FusedModel) {
			continue
		}
		tasks = append(tasks, Task{
			Category: fa.category,
			Kind:     TaskPrefix,
			Object:   object,
			Remote:   path.Join(object, RemoteFusedDir, fa.remote) + "/",
			Local:    filepath.Join(fusedLocal, fa.local),
		})
	}

	if features.FusedModel.BlenderFile {
		tasks = append(tasks, Task{
			Category: CategoryBlenderFile,
			Kind:     TaskFile,
			Object:   object,
			Remote:   path.Join(object, RemoteFusedDir, BakedTextureFile),
			Local:    filepath.Join(fusedLocal, BakedTextureFile),
		})
	}

	return tasks
}

// NeedsPoses reports whether any pose-level category is enabled.
func NeedsPoses(features config.FeaturesConfig) bool {
	return features.RGB.Enabled || features.PoseReconstruction.Enabled || features.Realsense.Enabled
}
