package validation

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavriel/MOADv2/aws/s3/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name      string
		bucket    string
		wantError bool
		errMsg    string
	}{
		{"valid_simple", "moad-dataset", false, ""},
		{"valid_with_dots", "moad.dataset", false, ""},
		{"valid_leading_digit", "1moad", false, ""},
		{"valid_max_length", strings.Repeat("a", 63), false, ""},

		{"empty", "", true, "bucket name cannot be empty"},
		{"too_short", "ab", true, "bucket name must be between 3 and 63 characters long"},
		{"too_long", strings.Repeat("a", 64), true, "bucket name must be between 3 and 63 characters long"},
		{"uppercase", "MOAD", true, "can only contain lowercase letters"},
		{"starts_with_hyphen", "-moad", true, "cannot start or end with a hyphen or dot"},
		{"ends_with_dot", "moad.", true, "cannot start or end with a hyphen or dot"},
		{"ip_address", "192.168.1.1", true, "formatted as an IP address"},
		{"adjacent_dots", "moad..data", true, "two adjacent periods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantError bool
		errMsg    string
	}{
		{"valid_simple", "ATB1_001/cad/model.stl", false, ""},
		{"valid_unicode", "объект/файл.txt", false, ""},
		{"valid_spaces", "obj/file with spaces.png", false, ""},
		{"valid_double_dot_inside_name", "obj/img..v2.png", false, ""},

		{"empty", "", true, "object key cannot be empty"},
		{"too_long", strings.Repeat("a", 1025), true, "cannot exceed 1024 characters"},
		{"traversal", "../secret.txt", true, "path traversal"},
		{"traversal_nested", "obj/../../etc/passwd", true, "path traversal"},
		{"absolute", "/etc/passwd", true, "path traversal"},
		{"windows_drive", "C:\\Windows\\System32", true, "path traversal"},
		{"windows_traversal", "..\\..\\boot.ini", true, "path traversal"},
		{"control_characters", "file\x00null.txt", true, "control characters"},
		{"newline", "file\nname.txt", true, "control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	assert.NoError(t, ValidatePrefix(""))
	assert.NoError(t, ValidatePrefix("ATB1_001/pose-a/"))
	assert.Error(t, ValidatePrefix("../other/"))
}

func TestLocalPath(t *testing.T) {
	root := filepath.Join("data", "ATB1_001", "cad")

	tests := []struct {
		name    string
		prefix  string
		key     string
		want    string
		wantErr error
	}{
		{
			name:   "direct child",
			prefix: "ATB1_001/cad/",
			key:    "ATB1_001/cad/model.stl",
			want:   filepath.Join(root, "model.stl"),
		},
		{
			name:   "nested child",
			prefix: "ATB1_001/cad/",
			key:    "ATB1_001/cad/parts/a.stl",
			want:   filepath.Join(root, "parts", "a.stl"),
		},
		{
			name:   "prefix without trailing slash",
			prefix: "ATB1_001/cad",
			key:    "ATB1_001/cad/model.stl",
			want:   filepath.Join(root, "model.stl"),
		},
		{
			name:    "directory placeholder",
			prefix:  "ATB1_001/cad/",
			key:     "ATB1_001/cad/",
			wantErr: errors.ErrInvalidObjectKey,
		},
		{
			name:    "nested directory placeholder",
			prefix:  "ATB1_001/cad/",
			key:     "ATB1_001/cad/parts/",
			wantErr: errors.ErrInvalidObjectKey,
		},
		{
			name:    "key outside prefix",
			prefix:  "ATB1_001/cad/",
			key:     "ATB1_002/cad/model.stl",
			wantErr: errors.ErrInvalidObjectKey,
		},
		{
			name:    "escaping key",
			prefix:  "ATB1_001/cad/",
			key:     "ATB1_001/cad/../../../etc/passwd",
			wantErr: errors.ErrUnsafePath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocalPath(root, tt.prefix, tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalPath_CurrentDirectoryRoot(t *testing.T) {
	got, err := LocalPath(".", "obj/", "obj/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "file.txt", got)
}

func BenchmarkValidateObjectKey(b *testing.B) {
	keys := []string{
		"ATB1_001/pose-a/DSLR/IMG_0001.JPG",
		"ATB1_001/fused_model/obj/fused_model.obj",
		"ATB1_001/cad/model.stl",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ValidateObjectKey(keys[i%len(keys)])
	}
}
