package config

import "strings"

// Default values for unspecified run configuration fields.
const (
	DefaultRegion     = "us-east-1"
	DefaultMaxRetries = 3

	DefaultRGBFolder            = "DSLR"
	DefaultRGBExpectedFiles     = 360
	DefaultReconstructionFolder = "reconstruction"
	DefaultRealsenseFolder      = "realsense"
	DefaultCADFolder            = "cad"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values ("" and 0) are replaced; explicit values are preserved.
// Boolean defaults such as rgb.confirm are applied while loading, since
// false is indistinguishable from unset here.
func ApplyDefaults(cfg *RunConfig) {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	cfg.Auth.Mode = strings.ToLower(strings.TrimSpace(cfg.Auth.Mode))
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = AuthAnonymous
	}

	applyCategoryDefaults(&cfg.Features.RGB, DefaultRGBFolder, DefaultRGBExpectedFiles)
	applyCategoryDefaults(&cfg.Features.PoseReconstruction, DefaultReconstructionFolder, 0)
	applyCategoryDefaults(&cfg.Features.Realsense, DefaultRealsenseFolder, 0)
	applyCategoryDefaults(&cfg.Features.CADModel, DefaultCADFolder, 0)
}

func applyCategoryDefaults(cfg *CategoryConfig, folder string, expected int) {
	cfg.RemoteFolder = strings.Trim(cfg.RemoteFolder, "/")
	if cfg.RemoteFolder == "" {
		cfg.RemoteFolder = folder
	}
	if cfg.ExpectedFiles == 0 {
		cfg.ExpectedFiles = expected
	}
}

// GetDefaultConfig returns a run configuration with every default applied.
// Bucket and TargetDir are left empty and must be supplied.
func GetDefaultConfig() *RunConfig {
	cfg := &RunConfig{
		MaxRetries: DefaultMaxRetries,
	}
	cfg.Features.RGB.Confirm = true
	ApplyDefaults(cfg)
	return cfg
}
