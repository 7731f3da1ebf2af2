package planner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavriel/MOADv2/aws/s3/s3types"
	"github.com/pgavriel/MOADv2/fs/billy"
)

func TestPlanner_Plan(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.MkdirAll("out", 0o755))
	require.NoError(t, fsys.WriteFile(filepath.Join("out", "b.png"), []byte("b"), 0o644))

	objects := []s3types.Object{
		{Key: "obj/cad/c.stl", Size: 30},
		{Key: "obj/cad/", Size: 0},
		{Key: "obj/cad/b.png", Size: 20},
		{Key: "obj/cad/../../escape.txt", Size: 5},
		{Key: "obj/cad/a.obj", Size: 10},
	}

	ops, err := NewPlanner(fsys).Plan("obj/cad/", "out", objects)
	require.NoError(t, err)
	require.Len(t, ops, 4)

	assert.Equal(t, "obj/cad/../../escape.txt", ops[0].Key)
	assert.Equal(t, s3types.MirrorReject, ops[0].Action)
	assert.Empty(t, ops[0].LocalPath)

	assert.Equal(t, "obj/cad/a.obj", ops[1].Key)
	assert.Equal(t, s3types.MirrorDownload, ops[1].Action)
	assert.Equal(t, filepath.Join("out", "a.obj"), ops[1].LocalPath)

	assert.Equal(t, "obj/cad/b.png", ops[2].Key)
	assert.Equal(t, s3types.MirrorSkip, ops[2].Action)

	assert.Equal(t, s3types.MirrorDownload, ops[3].Action)

	stats := GetOperationStats(ops)
	assert.Equal(t, OperationStats{
		DownloadCount: 2,
		SkipCount:     1,
		RejectCount:   1,
		DownloadBytes: 40,
	}, stats)
}

func TestPlanner_Plan_Empty(t *testing.T) {
	ops, err := NewPlanner(billy.NewInMemoryFS()).Plan("obj/", "out", nil)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestPlanner_Plan_LocalRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cad")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))

	objects := []s3types.Object{{Key: "obj/cad/a.stl", Size: 1}}
	_, err := NewPlanner(billy.NewBaseOSFS()).Plan("obj/cad/", root, objects)
	require.Error(t, err)

	msg := err.Error()
	assert.Equal(t, 1, strings.Count(msg, "billy: stat"), msg)
	assert.NotContains(t, msg, "failed to check")
	assert.Contains(t, msg, filepath.Join(root, "a.stl"))
}
