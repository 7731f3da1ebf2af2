package config

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
)

// RunConfigFile is the run configuration file name inside a configuration directory.
const RunConfigFile = "downloader_config.json"

// EnvPrefix is the prefix of environment variables that override run configuration keys.
// Nested keys use underscores, e.g. MOAD_AUTH_MODE.
const EnvPrefix = "MOAD"

// Authentication modes.
const (
	AuthAnonymous    = "anonymous"
	AuthCredentialed = "credentialed"
)

// RunConfig is the download run configuration.
type RunConfig struct {
	// Bucket is the dataset bucket name.
	Bucket string `mapstructure:"bucket" validate:"required"`

	// Region is the bucket region.
	Region string `mapstructure:"region" validate:"required"`

	// Endpoint overrides the storage endpoint for S3-compatible stores.
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`

	// ForcePathStyle enables path-style addressing.
	ForcePathStyle bool `mapstructure:"force_path_style"`

	Auth AuthConfig `mapstructure:"auth"`

	// TargetDir is the local root every object is mirrored under.
	TargetDir string `mapstructure:"target_dir" validate:"required"`

	// ObjectGroup is the catalog group used when the caller names none.
	ObjectGroup string `mapstructure:"object_group"`

	// MaxRetries counts retries after the first request; 0 disables them.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=20"`
	// Timeout bounds connecting and waiting for response headers, not the body.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`

	// RateLimit caps download bandwidth in bytes per second. Zero is unlimited.
	RateLimit ByteSize `mapstructure:"rate_limit"`

	Features FeaturesConfig `mapstructure:"features"`
}

// AuthConfig selects how requests are signed.
type AuthConfig struct {
	Mode    string `mapstructure:"mode" validate:"required,oneof=anonymous credentialed"`
	Profile string `mapstructure:"profile"`
}

// Anonymous reports whether requests are sent unsigned.
func (a AuthConfig) Anonymous() bool {
	return a.Mode == AuthAnonymous
}

// FeaturesConfig toggles each downloadable category.
type FeaturesConfig struct {
	RGB                CategoryConfig `mapstructure:"rgb"`
	PoseReconstruction CategoryConfig `mapstructure:"pose_reconstruction"`
	Realsense          CategoryConfig `mapstructure:"realsense"`
	CADModel           CategoryConfig `mapstructure:"cad_model"`
	FusedModel         FusedConfig    `mapstructure:"fused_model"`
}

// CategoryConfig describes one folder-backed category.
type CategoryConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// RemoteFolder is the folder name under the object or pose prefix.
	RemoteFolder string `mapstructure:"remote_folder" validate:"required,excludesall=/\\"`

	// ExpectedFiles gates the completeness probe. Zero disables it.
	ExpectedFiles int `mapstructure:"expected_files" validate:"gte=0"`

	// Confirm asks the operator once per run before the first transfer.
	Confirm bool `mapstructure:"confirm"`
}

// FusedConfig toggles the fused model artifacts.
type FusedConfig struct {
	RawCloud    bool `mapstructure:"raw_cloud"`
	RawMesh     bool `mapstructure:"raw_mesh"`
	OBJMesh     bool `mapstructure:"obj_mesh"`
	USDMesh     bool `mapstructure:"usd_mesh"`
	BlenderFile bool `mapstructure:"blender_file"`
}

// Any reports whether at least one fused artifact is enabled.
func (f FusedConfig) Any() bool {
	return f.RawCloud || f.RawMesh || f.OBJMesh || f.USDMesh || f.BlenderFile
}

// ByteSize is a byte count that decodes from human-readable strings such as "50MB".
type ByteSize uint64

// String formats the size using SI units.
func (b ByteSize) String() string {
	return humanize.Bytes(uint64(b))
}

// LoadRunConfig reads the run configuration at path, applies environment
// overrides and defaults, and validates the result.
func LoadRunConfig(fsys fs.Filesystem, path string) (*RunConfig, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeInvalidConfig,
			"failed to read run configuration",
			map[string]interface{}{
				"path": path,
			},
		)
	}

	v := viper.New()
	setupViper(v)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeInvalidConfig,
			"failed to parse run configuration",
			map[string]interface{}{
				"path": path,
			},
		)
	}

	var cfg RunConfig
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeInvalidConfig,
			"failed to decode run configuration",
			map[string]interface{}{
				"path": path,
			},
		)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeInvalidConfig,
			"run configuration validation failed",
			map[string]interface{}{
				"path": path,
			},
		)
	}

	return &cfg, nil
}

// setupViper configures JSON parsing, environment overrides and the
// defaults that cannot be expressed as zero values.
func setupViper(v *viper.Viper) {
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only reaches keys viper already knows about, so every
	// overridable scalar gets a default here.
	v.SetDefault("bucket", "")
	v.SetDefault("region", DefaultRegion)
	v.SetDefault("endpoint", "")
	v.SetDefault("force_path_style", false)
	v.SetDefault("auth.mode", AuthAnonymous)
	v.SetDefault("auth.profile", "")
	v.SetDefault("target_dir", "")
	v.SetDefault("object_group", "")
	v.SetDefault("max_retries", DefaultMaxRetries)
	v.SetDefault("timeout", "0s")
	v.SetDefault("rate_limit", "")
	v.SetDefault("features.rgb.confirm", true)
}

// configDecodeHooks returns a combined decode hook for ByteSize and time.Duration.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings like "50MB" or "1GiB", and plain
// numbers, to ByteSize. An empty string decodes to zero.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return ByteSize(0), nil
			}
			n, err := humanize.ParseBytes(v)
			if err != nil {
				return nil, fmt.Errorf("invalid byte size %q: %w", v, err)
			}
			return ByteSize(n), nil
		case int:
			if v < 0 {
				return nil, fmt.Errorf("invalid byte size %d", v)
			}
			return ByteSize(v), nil
		case int64:
			if v < 0 {
				return nil, fmt.Errorf("invalid byte size %d", v)
			}
			return ByteSize(v), nil
		case uint64:
			return ByteSize(v), nil
		case float64:
			// JSON numbers decode as float64
			if v < 0 {
				return nil, fmt.Errorf("invalid byte size %v", v)
			}
			return ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings like "30s" or "5m" to time.Duration.
// Plain numbers are read as seconds.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return time.Duration(0), nil
			}
			return time.ParseDuration(v)
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}
